// Package i18n holds the label catalogue used by templates and form errors.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "en"

type ctxKey struct{}

var catalog = map[string]map[string]string{
	"en": {
		"required":       "Required",
		"invalid_email":  "Invalid email address",
		"invalid_choice": "Invalid choice",
		"too_short":      "Too short",
		"already_exists": "Already exists",

		"created":             "Created",
		"saved":               "Changes saved",
		"deleted":             "Deleted",
		"invalid_credentials": "Invalid email or password",
		"wrong_password":      "Current password is incorrect",
		"password_changed":    "Password updated",
		"mail_sent":           "Message sent",
		"mail_failed":         "Message could not be delivered",
		"password_mismatch":   "Passwords do not match",
		"invalid_number":      "Must be a number",
		"invalid_date":        "Invalid date",

		"dashboard":          "Dashboard",
		"dashboard_subtitle": "Overview of your pipeline",
		"new_lead":           "New lead",
		"total_leads":        "Total leads",
		"won_deals":          "Won deals",
		"contacts":           "Contacts",
		"revenue":            "Revenue",
		"revenue_chart":      "Revenue, last six months",
		"recent_leads":       "Recent leads",
		"recent_activities":  "Recent activities",
		"no_leads":           "No leads yet.",
		"no_activities":      "No activities yet.",
		"vs_last_month":      "vs last month",

		"NEW":         "New",
		"CONTACTED":   "Contacted",
		"QUALIFIED":   "Qualified",
		"PROPOSAL":    "Proposal",
		"NEGOTIATION": "Negotiation",
		"WON":         "Won",
		"LOST":        "Lost",

		"WEB":           "Website",
		"PHONE":         "Phone",
		"EMAIL":         "Email",
		"REFERRAL":      "Referral",
		"SOCIAL_MEDIA":  "Social Media",
		"ADVERTISEMENT": "Advertisement",
		"OTHER":         "Other",

		"CALL":    "Call",
		"MEETING": "Meeting",
		"NOTE":    "Note",
		"TASK":    "Task",

		"DRAFT":    "Draft",
		"SENT":     "Sent",
		"ACCEPTED": "Accepted",
		"DECLINED": "Declined",
		"EXPIRED":  "Expired",

		"inbox":   "Inbox",
		"sent":    "Sent",
		"trash":   "Trash",
		"archive": "Archive",
	},
	"fr": {
		"required":       "Requis",
		"invalid_email":  "Adresse e-mail invalide",
		"invalid_choice": "Choix invalide",
		"too_short":      "Trop court",
		"already_exists": "Existe déjà",

		"created":             "Créé",
		"saved":               "Modifications enregistrées",
		"deleted":             "Supprimé",
		"invalid_credentials": "E-mail ou mot de passe invalide",
		"wrong_password":      "Mot de passe actuel incorrect",
		"password_changed":    "Mot de passe mis à jour",
		"mail_sent":           "Message envoyé",
		"mail_failed":         "Le message n'a pas pu être envoyé",
		"password_mismatch":   "Les mots de passe ne correspondent pas",
		"invalid_number":      "Doit être un nombre",
		"invalid_date":        "Date invalide",

		"dashboard":          "Tableau de bord",
		"dashboard_subtitle": "Vue d'ensemble de votre pipeline",
		"new_lead":           "Nouveau lead",
		"total_leads":        "Leads au total",
		"won_deals":          "Affaires gagnées",
		"contacts":           "Contacts",
		"revenue":            "Chiffre d'affaires",
		"revenue_chart":      "Chiffre d'affaires, six derniers mois",
		"recent_leads":       "Leads récents",
		"recent_activities":  "Activités récentes",
		"no_leads":           "Aucun lead pour l'instant.",
		"no_activities":      "Aucune activité pour l'instant.",
		"vs_last_month":      "vs mois dernier",

		"NEW":         "Nouveau",
		"CONTACTED":   "Contacté",
		"QUALIFIED":   "Qualifié",
		"PROPOSAL":    "Proposition",
		"NEGOTIATION": "Négociation",
		"WON":         "Gagné",
		"LOST":        "Perdu",

		"WEB":           "Site web",
		"PHONE":         "Téléphone",
		"EMAIL":         "E-mail",
		"REFERRAL":      "Recommandation",
		"SOCIAL_MEDIA":  "Réseaux sociaux",
		"ADVERTISEMENT": "Publicité",
		"OTHER":         "Autre",

		"CALL":    "Appel",
		"MEETING": "Réunion",
		"NOTE":    "Note",
		"TASK":    "Tâche",

		"DRAFT":    "Brouillon",
		"SENT":     "Envoyé",
		"ACCEPTED": "Accepté",
		"DECLINED": "Refusé",
		"EXPIRED":  "Expiré",

		"inbox":   "Boîte de réception",
		"sent":    "Envoyés",
		"trash":   "Corbeille",
		"archive": "Archives",
	},
}

// T translates code into lang, falling back to English, then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
