package wave

import "strconv"

// ElementType identifies a non-text element embedded in a blip's document.
type ElementType string

// Form elements
const (
	ElementInput            ElementType = "INPUT"
	ElementPassword         ElementType = "PASSWORD"
	ElementCheck            ElementType = "CHECK"
	ElementLabel            ElementType = "LABEL"
	ElementButton           ElementType = "BUTTON"
	ElementRadioButton      ElementType = "RADIO_BUTTON"
	ElementRadioButtonGroup ElementType = "RADIO_BUTTON_GROUP"
	ElementTextarea         ElementType = "TEXTAREA"
)

// Other element kinds
const (
	ElementInlineBlip ElementType = "INLINE_BLIP"
	ElementGadget     ElementType = "GADGET"
	ElementImage      ElementType = "IMAGE"
)

// StyleType identifies a text style annotation value.
type StyleType string

// Text styles
const (
	StyleBold      StyleType = "BOLD"
	StyleItalic    StyleType = "ITALIC"
	StyleUnderline StyleType = "UNDERLINE"
	StyleIndent1   StyleType = "INDENT1"
	StyleIndent2   StyleType = "INDENT2"
	StyleIndent3   StyleType = "INDENT3"
	StyleBulleted  StyleType = "BULLETED"
	StyleHeading1  StyleType = "HEADING1"
	StyleHeading2  StyleType = "HEADING2"
	StyleHeading3  StyleType = "HEADING3"
	StyleHeading4  StyleType = "HEADING4"
)

// Range addresses a half-open span of document content.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Annotation is a named value attached to a range of document content.
type Annotation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Range Range  `json:"range"`
}

// StyledText is a run of text with a single style applied.
type StyledText struct {
	Text  string    `json:"text"`
	Style StyleType `json:"style"`
}

// Element is a typed, property-bag document element (form element, gadget,
// image, or inline blip marker).
type Element struct {
	Type       ElementType       `json:"type"`
	Properties map[string]string `json:"properties"`
}

// Property returns the named element property, or "" if unset.
func (e Element) Property(key string) string {
	return e.Properties[key]
}

// SetProperty sets the named element property, allocating the property map
// on first use.
func (e *Element) SetProperty(key, value string) {
	if e.Properties == nil {
		e.Properties = make(map[string]string)
	}
	e.Properties[key] = value
}

// IsFormElement reports whether the element is one of the form element
// types.
func (e Element) IsFormElement() bool {
	switch e.Type {
	case ElementInput, ElementPassword, ElementCheck, ElementLabel,
		ElementButton, ElementRadioButton, ElementRadioButtonGroup,
		ElementTextarea:
		return true
	}
	return false
}

// NewGadget constructs a gadget element for the given specification URL.
func NewGadget(url string) Element {
	e := Element{Type: ElementGadget}
	e.SetProperty("url", url)
	return e
}

// NewFormElement constructs a form element with a name, default value, and
// current value.
func NewFormElement(typ ElementType, name, defaultValue, value string) Element {
	e := Element{Type: typ}
	e.SetProperty("name", name)
	e.SetProperty("defaultValue", defaultValue)
	e.SetProperty("value", value)
	return e
}

// NewImage constructs an image element.
func NewImage(url string, width, height int, caption string) Element {
	e := Element{Type: ElementImage}
	e.SetProperty("url", url)
	e.SetProperty("width", strconv.Itoa(width))
	e.SetProperty("height", strconv.Itoa(height))
	e.SetProperty("caption", caption)
	return e
}

// GadgetField returns the named field of a gadget's state.
func (e Element) GadgetField(key string) string {
	return e.Property(key)
}
