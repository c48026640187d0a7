package vanilla

// ChromeClass is a typed identifier for the CSS classes on the form chrome.
type ChromeClass string

const (
	ClassForm   ChromeClass = "loginform"
	ClassInfo   ChromeClass = "loginform__info"
	ClassLabel  ChromeClass = "loginform__label"
	ClassInput  ChromeClass = "loginform__input"
	ClassSubmit ChromeClass = "loginform__submit"
	ClassAlert  ChromeClass = "loginform__alert"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":   string(ClassForm),
		"info":   string(ClassInfo),
		"label":  string(ClassLabel),
		"input":  string(ClassInput),
		"submit": string(ClassSubmit),
		"alert":  string(ClassAlert),
	}
}
