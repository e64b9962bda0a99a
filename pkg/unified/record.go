package unified

// Record is one typed payload unit within a unified data object. The
// store only ever touches identity, type tag, and byte size; payload
// internals stay behind the concrete kinds and the entry codec.
type Record interface {
	UID() string
	SetUID(uid string)
	Type() Type
	Size() int64
}

// recordBase carries the per-object-unique identifier shared by all kinds.
type recordBase struct {
	uid string
}

func (r *recordBase) UID() string       { return r.uid }
func (r *recordBase) SetUID(uid string) { r.uid = uid }

// Text is the base textual record; concrete text kinds embed it.
type Text struct {
	recordBase
	Details Details
}

func (r *Text) Type() Type  { return TypeText }
func (r *Text) Size() int64 { return r.Details.Size() }

// PlainText holds plain text content plus an optional abstract.
type PlainText struct {
	Text
	Content  string
	Abstract string
}

func (r *PlainText) Type() Type { return TypePlainText }
func (r *PlainText) Size() int64 {
	return r.Details.Size() + int64(len(r.Content)+len(r.Abstract))
}

// HTML holds markup content with a plain-text fallback.
type HTML struct {
	Text
	HTMLContent  string
	PlainContent string
}

func (r *HTML) Type() Type { return TypeHTML }
func (r *HTML) Size() int64 {
	return r.Details.Size() + int64(len(r.HTMLContent)+len(r.PlainContent))
}

// Link holds a hyperlink with an optional description.
type Link struct {
	Text
	URL         string
	Description string
}

func (r *Link) Type() Type { return TypeHyperlink }
func (r *Link) Size() int64 {
	return r.Details.Size() + int64(len(r.URL)+len(r.Description))
}

// File references a local and optional remote URI.
type File struct {
	recordBase
	URI       string
	RemoteURI string
	Details   Details
}

func (r *File) Type() Type { return TypeFile }
func (r *File) Size() int64 {
	return r.Details.Size() + int64(len(r.URI)+len(r.RemoteURI))
}

// Image is a file record tagged as an image.
type Image struct {
	File
}

func (r *Image) Type() Type { return TypeImage }

// Video is a file record tagged as a video.
type Video struct {
	File
}

func (r *Video) Type() Type { return TypeVideo }

// Audio is a file record tagged as audio.
type Audio struct {
	File
}

func (r *Audio) Type() Type { return TypeAudio }

// Folder is a file record tagged as a folder.
type Folder struct {
	File
}

func (r *Folder) Type() Type { return TypeFolder }

// SystemDefinedRecord carries system payloads as bare details.
type SystemDefinedRecord struct {
	recordBase
	Details Details
}

func (r *SystemDefinedRecord) Type() Type  { return TypeSystemDefinedRecord }
func (r *SystemDefinedRecord) Size() int64 { return r.Details.Size() }

// SystemDefinedForm describes a UI form card.
type SystemDefinedForm struct {
	SystemDefinedRecord
	FormID      int32
	FormName    string
	BundleName  string
	AbilityName string
	Module      string
}

func (r *SystemDefinedForm) Type() Type { return TypeSystemDefinedForm }
func (r *SystemDefinedForm) Size() int64 {
	return r.Details.Size() + 4 +
		int64(len(r.FormName)+len(r.BundleName)+len(r.AbilityName)+len(r.Module))
}

// SystemDefinedAppItem describes an application shortcut item.
type SystemDefinedAppItem struct {
	SystemDefinedRecord
	AppID       string
	AppName     string
	AppIconID   string
	AppLabelID  string
	BundleName  string
	AbilityName string
}

func (r *SystemDefinedAppItem) Type() Type { return TypeSystemDefinedAppItem }
func (r *SystemDefinedAppItem) Size() int64 {
	return r.Details.Size() +
		int64(len(r.AppID)+len(r.AppName)+len(r.AppIconID)+
			len(r.AppLabelID)+len(r.BundleName)+len(r.AbilityName))
}

// SystemDefinedPixelMap carries raw pixel data.
type SystemDefinedPixelMap struct {
	SystemDefinedRecord
	RawData []byte
}

func (r *SystemDefinedPixelMap) Type() Type  { return TypeSystemDefinedPixelMap }
func (r *SystemDefinedPixelMap) Size() int64 { return r.Details.Size() + int64(len(r.RawData)) }
