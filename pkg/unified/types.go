package unified

// Type tags the payload kind of a record. Tags are part of the persisted
// TLV encoding and must not be renumbered.
type Type int32

// Record types
const (
	TypeText Type = iota
	TypePlainText
	TypeHTML
	TypeHyperlink
	TypeFile
	TypeImage
	TypeVideo
	TypeAudio
	TypeFolder
	TypeSystemDefinedRecord
	TypeSystemDefinedForm
	TypeSystemDefinedAppItem
	TypeSystemDefinedPixelMap
)

// typeCategories maps record types to the user-facing category strings
// used in summaries.
var typeCategories = map[Type]string{
	TypeText:                  "general.text",
	TypePlainText:             "general.plain-text",
	TypeHTML:                  "general.html",
	TypeHyperlink:             "general.hyperlink",
	TypeFile:                  "general.file",
	TypeImage:                 "general.image",
	TypeVideo:                 "general.video",
	TypeAudio:                 "general.audio",
	TypeFolder:                "general.folder",
	TypeSystemDefinedRecord:   "openharmony.system-object",
	TypeSystemDefinedForm:     "openharmony.form",
	TypeSystemDefinedAppItem:  "openharmony.app-item",
	TypeSystemDefinedPixelMap: "openharmony.pixel-map",
}

// Category returns the summary category string for the type, or
// "unknown" for an unmapped tag.
func (t Type) Category() string {
	if c, ok := typeCategories[t]; ok {
		return c
	}
	return "unknown"
}

// Valid reports whether the tag maps to a known record kind.
func (t Type) Valid() bool {
	_, ok := typeCategories[t]
	return ok
}

// Intentions describe why a unified data object exists. Free-form values
// are accepted on parse; these are the well-known ones.
const (
	IntentionDrag    = "drag"
	IntentionDataHub = "data_hub"
)

// Details carries auxiliary string properties of a record.
type Details map[string]string

// Size returns the byte size of all keys and values.
func (d Details) Size() int64 {
	var n int64
	for k, v := range d {
		n += int64(len(k) + len(v))
	}
	return n
}
