package core

// MonthLocale selects the fixed month-name table used for derived labels.
type MonthLocale string

const (
	LocaleES MonthLocale = "es"
	LocaleEN MonthLocale = "en"
)

var monthsES = [13]string{"",
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var monthsEN = [13]string{"",
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the localized name for month 1-12, or "" when the month
// is out of range. Unknown locales fall back to Spanish, the locale of the
// source spreadsheets.
func MonthName(month int, locale MonthLocale) string {
	if month < 1 || month > 12 {
		return ""
	}
	if locale == LocaleEN {
		return monthsEN[month]
	}
	return monthsES[month]
}

// ValidLocale reports whether the locale has a month table.
func ValidLocale(locale MonthLocale) bool {
	return locale == LocaleES || locale == LocaleEN
}
