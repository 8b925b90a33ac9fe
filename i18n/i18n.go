package i18n

import "strings"

// Minimal fr/en message table. French is the reference language; English
// falls back to French, unknown codes fall back to the code itself so a
// missing translation is visible instead of silent.

var fr = map[string]string{
	"required":           "Requis",
	"invalid_email":      "Adresse email invalide",
	"email_taken":        "Cet email est déjà utilisé.",
	"too_long":           "Valeur trop longue",
	"too_large":          "Valeur trop élevée",
	"invalid_choice":     "Choix invalide",
	"out_of_range":       "Valeur hors limites",
	"login_failed":       "Email ou mot de passe incorrect.",
	"password_too_short": "8 caractères minimum",
	"password_mismatch":  "Les mots de passe ne correspondent pas",
	"invalid_number":     "Nombre invalide",

	"flash_login_welcome":      "Bienvenue",
	"flash_account_created":    "Compte créé avec succès! Vous pouvez maintenant vous connecter.",
	"flash_account_deleted":    "Votre compte a été supprimé avec succès.",
	"flash_profile_updated":    "Votre profil a été mis à jour avec succès!",
	"flash_password_saved":     "Votre mot de passe a été changé avec succès!",
	"flash_password_current_bad": "Mot de passe actuel incorrect.",
	"flash_password_mismatch":  "Les mots de passe ne correspondent pas (8 caractères minimum).",
	"flash_password_save_error": "Impossible d'enregistrer le nouveau mot de passe.",
	"flash_form_invalid":       "Veuillez corriger les erreurs dans le formulaire.",
	"flash_structure_created":  "La structure a été créée avec succès!",
	"flash_structure_updated":  "La structure a été mise à jour avec succès!",
	"flash_structure_deleted":  "La structure a été supprimée avec succès!",
	"flash_structure_required": "Créez d'abord une structure.",
	"flash_plat_created":       "Plat créé avec succès!",
	"flash_plat_updated":       "Plat mis à jour avec succès!",
	"flash_plat_deleted":       "Plat supprimé avec succès!",
	"flash_menu_created":       "Menu créé avec succès!",
	"flash_menu_updated":       "Le menu a été mis à jour avec succès.",
	"flash_menu_deleted":       "Menu supprimé avec succès!",
	"flash_avis_created":       "Avis publié avec succès!",
	"flash_avis_deleted":       "Avis supprimé avec succès!",

	"nav_home":       "Accueil",
	"nav_structures": "Structures",
	"nav_dashboard":  "Tableau de bord",
	"nav_login":      "Connexion",
	"nav_logout":     "Déconnexion",
	"nav_register":   "Inscription",
}

var en = map[string]string{
	"required":         "Required",
	"invalid_email":    "Invalid email address",
	"email_taken":      "This email is already in use.",
	"too_long":         "Value too long",
	"too_large":        "Value too large",
	"invalid_choice":   "Invalid choice",
	"out_of_range":     "Value out of range",
	"login_failed":       "Incorrect email or password.",
	"password_too_short": "8 characters minimum",
	"password_mismatch":  "Passwords do not match",
	"invalid_number":     "Invalid number",

	"flash_login_welcome":      "Welcome",
	"flash_account_created":    "Account created. You can now sign in.",
	"flash_account_deleted":    "Your account has been deleted.",
	"flash_profile_updated":    "Your profile has been updated.",
	"flash_password_saved":     "Your password has been changed.",
	"flash_password_current_bad": "Current password is incorrect.",
	"flash_password_mismatch":  "Passwords do not match (8 characters minimum).",
	"flash_password_save_error": "Could not save the new password.",
	"flash_form_invalid":       "Please fix the errors in the form.",
	"flash_structure_created":  "Venue created.",
	"flash_structure_updated":  "Venue updated.",
	"flash_structure_deleted":  "Venue deleted.",
	"flash_structure_required": "Create a venue first.",
	"flash_plat_created":       "Dish created.",
	"flash_plat_updated":       "Dish updated.",
	"flash_plat_deleted":       "Dish deleted.",
	"flash_menu_created":       "Menu created.",
	"flash_menu_updated":       "Menu updated.",
	"flash_menu_deleted":       "Menu deleted.",
	"flash_avis_created":       "Review published.",
	"flash_avis_deleted":       "Review deleted.",

	"nav_home":       "Home",
	"nav_structures": "Venues",
	"nav_dashboard":  "Dashboard",
	"nav_login":      "Sign in",
	"nav_logout":     "Sign out",
	"nav_register":   "Sign up",
}

// T translates code for lang. Unknown languages fall back to French,
// unknown codes fall back to the code itself.
func T(lang, code string) string {
	if lang == "en" {
		if s, ok := en[code]; ok {
			return s
		}
	}
	if s, ok := fr[code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks fr or en from an Accept-Language header value.
// Only the first tag is considered; anything that is not English maps to fr.
func DetectLanguage(acceptLanguage string) string {
	s := strings.ToLower(strings.TrimSpace(acceptLanguage))
	if s == "" {
		return "fr"
	}
	first := s
	if i := strings.IndexAny(first, ",;"); i >= 0 {
		first = first[:i]
	}
	if first == "en" || strings.HasPrefix(first, "en-") {
		return "en"
	}
	return "fr"
}
