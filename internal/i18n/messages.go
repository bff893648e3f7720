// Package i18n holds the user-facing message table. German is the default
// locale for the primary workflows; English is matched from the request.
package i18n

// Supported locales.
const (
	LocaleDE = "de"
	LocaleEN = "en"
)

// DefaultLocale is used when neither cookie nor Accept-Language resolves.
const DefaultLocale = LocaleDE

var messages = map[string]map[string]string{
	LocaleDE: {
		"invitation.not_found":       "Einladung nicht gefunden",
		"invitation.invalid":         "Einladung ist nicht mehr gültig",
		"invitation.expired":         "Einladung ist abgelaufen",
		"invitation.duplicate":       "Für diese E-Mail-Adresse existiert bereits eine offene Einladung",
		"member.exists":              "Mitglied existiert bereits",
		"member.not_found":           "Mitglied nicht gefunden",
		"member.self_delete":         "Du kannst dein eigenes Konto nicht löschen",
		"member.last_admin":          "Der letzte aktive Administrator kann nicht gelöscht werden",
		"tenant.not_found":           "Club nicht gefunden",
		"tenant.plan_expired":        "Das Abonnement dieses Clubs ist abgelaufen",
		"tenant.slug_taken":          "Dieser Club-Name ist bereits vergeben",
		"event.not_found":            "Veranstaltung nicht gefunden",
		"event.invalid_window":       "Das Startdatum muss vor dem Enddatum liegen",
		"event.cancelled":            "Die Veranstaltung wurde abgesagt",
		"event.registration_closed":  "Die Anmeldefrist ist abgelaufen",
		"avatar.type_not_allowed":    "Dateityp nicht erlaubt (JPEG, PNG, WebP oder GIF)",
		"avatar.too_large":           "Datei ist zu groß (max. 5 MB)",
		"forbidden":                  "Keine Berechtigung für diese Aktion",
	},
	LocaleEN: {
		"invitation.not_found":       "invitation not found",
		"invitation.invalid":         "invitation is no longer valid",
		"invitation.expired":         "invitation has expired",
		"invitation.duplicate":       "a pending invitation already exists for this email",
		"member.exists":              "member already exists",
		"member.not_found":           "member not found",
		"member.self_delete":         "you cannot delete your own account",
		"member.last_admin":          "the last active administrator cannot be deleted",
		"tenant.not_found":           "club not found",
		"tenant.plan_expired":        "this club's subscription has expired",
		"tenant.slug_taken":          "this club name is already taken",
		"event.not_found":            "event not found",
		"event.invalid_window":       "event start must precede end",
		"event.cancelled":            "the event has been cancelled",
		"event.registration_closed":  "the registration deadline has passed",
		"avatar.type_not_allowed":    "file type not allowed (JPEG, PNG, WebP or GIF)",
		"avatar.too_large":           "file is too large (max 5 MiB)",
		"forbidden":                  "insufficient permission for this action",
	},
}

// T returns the message for key in the given locale, falling back to the
// default locale and finally to the key itself.
func T(locale, key string) string {
	if m, ok := messages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLocale][key]; ok {
		return s
	}
	return key
}
