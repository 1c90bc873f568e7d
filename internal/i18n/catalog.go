package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var serbian = map[string]string{
	// Navigation and alerts
	"Controllers":     "Kontroleri",
	"Sites":           "Lokacije",
	"Output":          "Prikaz",
	"Theme":           "Tema",
	"Language":        "Jezik",
	"Reset session":   "Resetuj sesiju",
	"Log out":         "Odjava",
	"Sign in":         "Prijava",
	"Username":        "Korisničko ime",
	"Password":        "Lozinka",
	"Controller URL":  "Adresa kontrolera",
	"Connect":         "Poveži",
	"Loading":         "Učitavanje",
	"Records":         "Zapisa",
	"Total time":      "Ukupno vreme",
	"Login":           "Prijava",
	"Load":            "Učitavanje",
	"Render":          "Prikaz",
	"Controller":      "Kontroler",
	"Version":         "Verzija",
	"Site":            "Lokacija",
	"Action":          "Akcija",
	"No data returned": "Nema podataka",
	"Please select a data collection from the menu":                 "Izaberite kolekciju podataka iz menija",
	"Please select a site from the Sites menu":                       "Izaberite lokaciju iz menija Lokacije",
	"Please select a controller from the Controllers menu":           "Izaberite kontroler iz menija Kontroleri",
	"Log in to %s":                                                   "Prijavite se na %s",
	"Log in to %s with username %s":                                  "Prijavite se na %s sa korisničkim imenom %s",
	"Unable to log in to the controller %s":                          "Prijava na kontroler %s nije uspela",
	"Unable to load the site list: %s":                               "Učitavanje liste lokacija nije uspelo: %s",
	"The request failed: %s":                                         "Zahtev nije uspeo: %s",
	"Invalid username or password":                                   "Pogrešno korisničko ime ili lozinka",
	"Too many login attempts, please try again later":                "Previše pokušaja prijave, pokušajte kasnije",
	"The form has expired, please reload the page":                   "Forma je istekla, osvežite stranicu",
	"Configuration error: %s":                                        "Greška u konfiguraciji: %s",
	"There was a problem connecting to the UniFi controller":         "Došlo je do problema pri povezivanju na UniFi kontroler",
	"Please contact support for further assistance":                  "Molimo Vas da kontaktirate korisničku podršku za dalje akcije",

	// Menu groups
	"Clients":       "Klijenti",
	"Devices":       "Uređaji",
	"Statistics":    "Statistika",
	"Hotspot":       "Hotspot",
	"Configuration": "Podešavanja",
	"Messages":      "Poruke",

	// Actions
	"Online clients":              "Povezani klijenti",
	"Client history":              "Istorija klijenata",
	"Client authorizations":       "Autorizacije klijenata",
	"Guests":                      "Gosti",
	"User groups":                 "Grupe korisnika",
	"Client sessions":             "Sesije klijenata",
	"Known users":                 "Poznati korisnici",
	"Device tags":                 "Oznake uređaja",
	"WLAN groups":                 "WLAN grupe",
	"Rogue access points":         "Nepoznate pristupne tačke",
	"Known rogue access points":   "Poznate nepoznate pristupne tačke",
	"5 minute site stats":         "Statistika lokacije (5 minuta)",
	"Hourly site stats":           "Statistika lokacije po satu",
	"Daily site stats":            "Dnevna statistika lokacije",
	"5 minute access point stats": "Statistika pristupnih tačaka (5 minuta)",
	"Hourly access point stats":   "Statistika pristupnih tačaka po satu",
	"Daily access point stats":    "Dnevna statistika pristupnih tačaka",
	"5 minute gateway stats":      "Statistika gejtveja (5 minuta)",
	"Hourly gateway stats":        "Statistika gejtveja po satu",
	"Daily gateway stats":         "Dnevna statistika gejtveja",
	"5 minute dashboard metrics":  "Metrike kontrolne table (5 minuta)",
	"Hourly dashboard metrics":    "Metrike kontrolne table po satu",
	"Site health":                 "Stanje lokacije",
	"Controller sysinfo":          "Sistemske informacije kontrolera",
	"Logged in user":              "Prijavljeni korisnik",
	"All sites stats":             "Statistika svih lokacija",
	"Site admins":                 "Administratori lokacije",
	"DPI stats":                   "DPI statistika",
	"Current channels":            "Trenutni kanali",
	"Country codes":               "Kodovi zemalja",
	"Port forwarding stats":       "Statistika prosleđivanja portova",
	"Vouchers":                    "Vaučeri",
	"Payments":                    "Plaćanja",
	"Hotspot operators":           "Hotspot operateri",
	"Site settings":               "Podešavanja lokacije",
	"WLAN configuration":          "WLAN podešavanja",
	"Network configuration":       "Mrežna podešavanja",
	"Port configuration":          "Podešavanja portova",
	"Port forwarding rules":       "Pravila prosleđivanja portova",
	"Firewall groups":             "Grupe zaštitnog zida",
	"Dynamic DNS":                 "Dinamički DNS",
	"VoIP extensions":             "VoIP lokali",
	"RADIUS accounts":             "RADIUS nalozi",
	"RADIUS profiles":             "RADIUS profili",
	"Auto backups":                "Automatske rezervne kopije",
	"Events":                      "Događaji",
	"Alarms":                      "Alarmi",
	"Alarm count":                 "Broj alarma",
	"Active alarm count":          "Broj aktivnih alarma",
	"IPS/IDS events":              "IPS/IDS događaji",

	// Voucher desk
	"Voucher desk":            "Vaučeri",
	"Choose a site":           "Izaberite lokaciju",
	"Site not found":          "Lokacija nije pronađena",
	"Create voucher":          "Napravi vaučer",
	"Duration (minutes)":      "Trajanje (minuta)",
	"Count":                   "Broj",
	"Usage":                   "Upotreba",
	"Single use":              "Jednokratna",
	"Multi use":               "Višekratna",
	"Note":                    "Napomena",
	"Upload limit (kbps)":     "Ograničenje slanja (kbps)",
	"Download limit (kbps)":   "Ograničenje preuzimanja (kbps)",
	"Data limit (MB)":         "Ograničenje saobraćaja (MB)",
	"Code":                    "Kod",
	"Duration":                "Trajanje",
	"Created":                 "Napravljen",
	"Status":                  "Status",
	"Valid":                   "Važeći",
	"Expired":                 "Istekao",
	"Revoke":                  "Poništi",
	"Print":                   "Štampaj",
	"No vouchers":             "Nema vaučera",
	"Voucher created":         "Vaučer je napravljen",
	"Voucher revoked":         "Vaučer je poništen",
	"Voucher printed":         "Vaučer je odštampan",
	"Failed to create voucher": "Pravljenje vaučera nije uspelo",
	"Failed to revoke voucher": "Poništavanje vaučera nije uspelo",
	"Failed to print voucher":  "Štampanje vaučera nije uspelo",
	"Unknown request":          "Nepoznat zahtev",
	"Copy":                     "Kopiraj",
	"UniFi API browser":        "UniFi API pregledač",

	// About dialog
	"About":              "O sistemu",
	"System information": "Osnovne informacije sistema",
	"Controller version": "Verzija kontrolera",
	"Go version":         "Go verzija",
	"Memory limit":       "Ograničenje memorije",
	"Memory used":        "Zauzeta memorija",
	"Operating system":   "Operativni sistem",
	"Close":              "Zatvori",
}

// Duration units, keyed by the English plural. Argument 1 selects the form.
var units = map[language.Tag]map[string]catalog.Message{
	language.English: {
		DaysKey:    plural.Selectf(1, "%d", "one", "%d day", "other", "%d days"),
		HoursKey:   plural.Selectf(1, "%d", "one", "%d hour", "other", "%d hours"),
		MinutesKey: plural.Selectf(1, "%d", "one", "%d minute", "other", "%d minutes"),
	},
	language.Serbian: {
		DaysKey:    plural.Selectf(1, "%d", "one", "%d dan", "few", "%d dana", "other", "%d dana"),
		HoursKey:   plural.Selectf(1, "%d", "one", "%d sat", "few", "%d sata", "other", "%d sati"),
		MinutesKey: plural.Selectf(1, "%d", "one", "%d minut", "few", "%d minuta", "other", "%d minuta"),
	},
}

// Keys of the duration unit messages.
const (
	DaysKey    = "%d days"
	HoursKey   = "%d hours"
	MinutesKey = "%d minutes"
)

func init() {
	for key, msg := range serbian {
		_ = message.SetString(language.Serbian, key, msg)
	}
	for tag, msgs := range units {
		for key, msg := range msgs {
			_ = message.Set(tag, key, msg)
		}
	}
}
