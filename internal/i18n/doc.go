// Package i18n provides the localized labels and messages shown by btscan.
//
// Message catalogs are YAML files embedded from locales/, one per language,
// each mapping a message key to a format string. They are loaded into a
// golang.org/x/text message catalog, and the best match for the user's
// locale is picked with a language.Matcher. English is the fallback both for
// unknown locales and for keys missing from a translation.
//
// # Usage Example
//
//	cat, err := i18n.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tr := cat.Translator(i18n.DetectLocale(""))
//	fmt.Println(tr.T(i18n.LabelName), device.Name)
//	fmt.Println(tr.T(i18n.MsgFound, 3))
//
// # Locale Detection
//
// DetectLocale uses an explicit setting first, then LC_ALL, LC_MESSAGES and
// LANG. POSIX values such as "ru_RU.UTF-8" are converted to BCP 47 tags.
package i18n
