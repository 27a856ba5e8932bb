// Package i18n holds the fr/en message catalog for API error codes.
package i18n

import (
	"context"
	"strings"
)

type ctxKey struct{}

const Default = "fr"

var catalog = map[string]map[string]string{
	"fr": {
		"required":              "Requis",
		"invalid_email":         "E-mail invalide",
		"invalid_value":         "Valeur invalide",
		"too_long":              "Trop long",
		"out_of_range":          "Hors limites",
		"validation_failed":     "Données invalides",
		"invalid_json":          "Corps JSON invalide",
		"invalid_id":            "Identifiant invalide",
		"not_found":             "Ressource introuvable",
		"chantier_not_found":    "Chantier introuvable",
		"materiel_not_found":    "Matériel introuvable",
		"user_not_found":        "Utilisateur introuvable",
		"duerp_not_found":       "DUERP introuvable",
		"forbidden":             "Accès interdit",
		"unauthorized":          "Authentification requise",
		"invalid_credentials":   "Identifiants incorrects",
		"no_company":            "Aucune entreprise associée au compte",
		"email_taken":           "Cet e-mail est déjà utilisé",
		"cannot_delete_self":    "Impossible de supprimer son propre compte",
		"csv_required":          "Fichier CSV manquant",
		"csv_invalid":           "CSV invalide ou vide",
		"file_too_large":        "Fichier trop volumineux",
		"too_many_requests":     "Trop de tentatives, réessayez plus tard",
		"pdf_generation_failed": "Échec de la génération du PDF",
		"delete_failed":         "Échec de la suppression",
		"internal_error":        "Erreur interne",
	},
	"en": {
		"required":              "Required",
		"invalid_email":         "Invalid e-mail",
		"invalid_value":         "Invalid value",
		"too_long":              "Too long",
		"out_of_range":          "Out of range",
		"validation_failed":     "Invalid data",
		"invalid_json":          "Invalid JSON body",
		"invalid_id":            "Invalid identifier",
		"not_found":             "Resource not found",
		"chantier_not_found":    "Site not found",
		"materiel_not_found":    "Equipment not found",
		"user_not_found":        "User not found",
		"duerp_not_found":       "Risk register not found",
		"forbidden":             "Forbidden",
		"unauthorized":          "Authentication required",
		"invalid_credentials":   "Incorrect username or password",
		"no_company":            "No company attached to this account",
		"email_taken":           "E-mail already registered",
		"cannot_delete_self":    "You cannot delete your own account",
		"csv_required":          "Missing CSV file",
		"csv_invalid":           "Invalid or empty CSV",
		"file_too_large":        "File too large",
		"too_many_requests":     "Too many attempts, try again later",
		"pdf_generation_failed": "PDF generation failed",
		"delete_failed":         "Delete failed",
		"internal_error":        "Internal error",
	},
}

// T translates code. Unknown languages use French; unknown codes are returned as-is.
func T(lang, code string) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog[Default]
	}
	if msg, ok := msgs[code]; ok {
		return msg
	}
	return code
}

// DetectLanguage picks "en" when the Accept-Language header starts with English, else "fr".
func DetectLanguage(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	first = strings.ToLower(strings.TrimSpace(first))
	if strings.HasPrefix(first, "en") {
		return "en"
	}
	return Default
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// WithLang stores the request language.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the request language or the default.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
