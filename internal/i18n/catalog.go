package i18n

var catalog = map[string]map[string]string{
	"en": {
		"auth.user_not_found":            "No account exists for this email address.",
		"auth.invalid_credentials":       "Invalid email or password.",
		"auth.invalid_token":             "The access token is invalid.",
		"auth.token_expired":             "The access token has expired. Please log in again.",
		"auth.session_revoked":           "This session has ended. Please log in again.",
		"auth.unknown_device":            "This device is not registered. Please log in again.",
		"auth.invalid_activation_secret": "The activation link is invalid or has already been used.",
		"auth.email_taken":               "An account with this email address already exists.",
		"auth.missing_token":             "Authorization header required.",
		"errors.internal":                "Something went wrong. Please try again later.",
		"errors.rate_limited":            "Too many requests. Please slow down.",
		"validation.invalid_body":        "Invalid request body.",
		"validation.email_required":      "Email is required.",
		"validation.email_invalid":       "Email address is not valid.",
		"validation.password_required":   "Password is required.",
		"validation.password_too_short":  "Password must be at least 8 characters long.",
		"validation.password_too_long":   "Password must be at most 72 bytes long.",
		"validation.activation_required": "Activation secret is required.",
		"mail.confirmation_subject":      "Confirm your Atrijum account",
		"mail.confirmation_body":         "Welcome to Atrijum!\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account, you can ignore this message.\n",
	},
	"sr": {
		"auth.user_not_found":            "Ne postoji nalog sa ovom email adresom.",
		"auth.invalid_credentials":       "Pogrešan email ili lozinka.",
		"auth.invalid_token":             "Pristupni token nije ispravan.",
		"auth.token_expired":             "Pristupni token je istekao. Prijavite se ponovo.",
		"auth.session_revoked":           "Ova sesija je završena. Prijavite se ponovo.",
		"auth.unknown_device":            "Ovaj uređaj nije registrovan. Prijavite se ponovo.",
		"auth.invalid_activation_secret": "Link za aktivaciju nije ispravan ili je već iskorišćen.",
		"auth.email_taken":               "Nalog sa ovom email adresom već postoji.",
		"auth.missing_token":             "Nedostaje Authorization zaglavlje.",
		"errors.internal":                "Došlo je do greške. Pokušajte ponovo kasnije.",
		"errors.rate_limited":            "Previše zahteva. Usporite.",
		"validation.invalid_body":        "Neispravno telo zahteva.",
		"validation.email_required":      "Email je obavezan.",
		"validation.email_invalid":       "Email adresa nije ispravna.",
		"validation.password_required":   "Lozinka je obavezna.",
		"validation.password_too_short":  "Lozinka mora imati najmanje 8 karaktera.",
		"validation.password_too_long":   "Lozinka može imati najviše 72 bajta.",
		"validation.activation_required": "Tajni ključ za aktivaciju je obavezan.",
		"mail.confirmation_subject":      "Potvrdite svoj Atrijum nalog",
		"mail.confirmation_body":         "Dobrodošli u Atrijum!\n\nPotvrdite svoju email adresu otvaranjem linka ispod:\n\n%s\n\nAko niste napravili nalog, zanemarite ovu poruku.\n",
	},
}
