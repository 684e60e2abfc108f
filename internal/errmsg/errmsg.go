// Package errmsg turns API error messages into the Hungarian text shown to users.
package errmsg

import "strings"

const unknownError = "Ismeretlen hiba történt."

type translation struct {
	message string
	hu      string
}

// Substring matching walks the table in order, so more specific messages come
// before any message they contain.
var translations = []translation{
	{"Invalid login credentials", "Hibás email cím vagy jelszó."},
	{"Email not confirmed", "Az email cím nincs megerősítve."},
	{"User already registered", "Ez az email cím már regisztrálva van."},
	{"Password should be at least 6 characters", "A jelszónak legalább 6 karakter hosszúnak kell lennie."},
	{"Password should be at least 8 characters", "A jelszónak legalább 8 karakter hosszúnak kell lennie."},
	{"Password must contain a lowercase letter", "A jelszónak tartalmaznia kell kisbetűt."},
	{"Password must contain an uppercase letter", "A jelszónak tartalmaznia kell nagybetűt."},
	{"Password must contain a number", "A jelszónak tartalmaznia kell számot."},
	{"Signup requires a valid password", "Érvényes jelszó szükséges a regisztrációhoz."},
	{"User not found", "Felhasználó nem található."},
	{"Email rate limit exceeded", "Túl sok email küldési kísérlet. Próbáld újra később."},
	{"For security purposes, you can only request this once every 60 seconds", "Biztonsági okokból csak 60 másodpercenként kérhetsz új kódot."},
	{"New password should be different from the old password.", "Az új jelszónak különböznie kell a régitől."},
	{"Auth session missing!", "Nincs aktív munkamenet. Kérjük, jelentkezz be újra."},
	{"JWT expired", "A munkamenet lejárt. Kérjük, jelentkezz be újra."},
	{"Token has expired or is invalid", "A token lejárt vagy érvénytelen."},
	{"Invalid or expired token", "A token lejárt vagy érvénytelen."},
	{"Unable to validate email address: invalid format", "Érvénytelen email formátum."},
	{"Signups not allowed for this instance", "A regisztráció nem engedélyezett."},
	{"A user with this email address has already been registered", "Ezzel az email címmel már regisztráltak."},
	{"over_email_send_rate_limit", "Túl sok email küldési kísérlet. Próbáld újra később."},

	{"Too many attempts. Request a new code.", "Túl sok próbálkozás. Kérj új kódot."},
	{"The code has expired. Request a new code.", "A kód lejárt. Kérj új kódot."},
	{"No active code. Request a new code.", "Nincs aktív kód. Kérj új kódot."},
	{"Wrong code. Request a new code.", "Hibás kód. Kérj új kódot."},
	{"Wrong code", "Hibás kód."},
	{"Invalid code format", "Érvénytelen kódformátum."},
	{"TOTP is not configured", "A hitelesítő alkalmazás nincs beállítva."},
	{"This MFA method is not enabled for the account", "Ez az azonosítási mód nincs beállítva a fiókhoz."},
	{"MFA settings not found", "Nincs kétlépcsős azonosítás beállítva."},
	{"MFA is already configured", "A kétlépcsős azonosítás már be van állítva."},
	{"No MFA setup in progress", "Nincs folyamatban kétlépcsős beállítás."},
	{"Email service is not configured", "Az email szolgáltatás nincs beállítva."},
	{"Failed to send email", "Nem sikerült elküldeni az emailt."},
	{"No email found", "Nem található email cím."},

	{"Only admins can invite users", "Csak adminisztrátor hívhat meg felhasználót."},
	{"Only admins can perform this action", "Ezt a műveletet csak adminisztrátor végezheti."},
	{"Invalid or expired invitation", "Érvénytelen vagy lejárt meghívó."},
	{"Email does not match the invitation", "Az email cím nem egyezik a meghívóval."},
	{"User already has a role", "A felhasználó már rendelkezik szerepkörrel."},
	{"Invalid email format", "Érvénytelen email formátum."},
	{"Email is required", "Az email cím megadása kötelező."},
	{"Missing token or userId", "Hiányzó token vagy felhasználó."},
	{"You cannot delete your own account", "A saját fiókodat nem törölheted."},
	{"You cannot change your own role", "A saját szerepkörödet nem módosíthatod."},
	{"Partner data is temporarily unavailable", "A partner adatok átmenetileg nem érhetők el."},
}

var exact = func() map[string]string {
	m := make(map[string]string, len(translations))
	for _, t := range translations {
		m[t.message] = t.hu
	}
	return m
}()

// Translate returns the Hungarian text for message: an exact match first, then
// the first entry contained in message ignoring case. Unknown messages pass
// through unchanged.
func Translate(message string) string {
	if message == "" {
		return unknownError
	}
	if hu, ok := exact[message]; ok {
		return hu
	}
	lower := strings.ToLower(message)
	for _, t := range translations {
		if strings.Contains(lower, strings.ToLower(t.message)) {
			return t.hu
		}
	}
	return message
}
