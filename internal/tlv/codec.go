package tlv

import (
	"errors"
	"fmt"

	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/unified"
)

// Codec marshals runtime metadata and records to framed TLV entries.
// It is the entry codec consumed by the runtime store.
type Codec struct{}

// Runtime field tags.
const (
	tagRuntimeKey uint16 = 1 + iota
	tagRuntimePrivate
	tagRuntimeCreateTime
	tagRuntimeModifiedTime
	tagRuntimeCreatePackage
	tagRuntimeSourcePackage
	tagRuntimeDeviceID
	tagRuntimeRecordTotal
)

// Record field tags. tagRecordType is always written first.
const (
	tagRecordType uint16 = 32 + iota
	tagRecordUID
	tagRecordDetails
	tagRecordContent
	tagRecordAbstract
	tagRecordHTMLContent
	tagRecordPlainContent
	tagRecordURL
	tagRecordDescription
	tagRecordURI
	tagRecordRemoteURI
	tagRecordFormID
	tagRecordFormName
	tagRecordBundleName
	tagRecordAbilityName
	tagRecordModule
	tagRecordAppID
	tagRecordAppName
	tagRecordAppIconID
	tagRecordAppLabelID
	tagRecordRawData
)

// EncodeRuntime marshals runtime metadata.
func (Codec) EncodeRuntime(rt *unified.Runtime) ([]byte, error) {
	if rt == nil {
		return nil, errors.New("tlv: nil runtime")
	}
	var w writer
	w.str(tagRuntimeKey, rt.Key.String())
	w.boolean(tagRuntimePrivate, rt.IsPrivate)
	w.i64(tagRuntimeCreateTime, rt.CreateTime)
	w.i64(tagRuntimeModifiedTime, rt.LastModifiedTime)
	w.str(tagRuntimeCreatePackage, rt.CreatePackage)
	w.str(tagRuntimeSourcePackage, rt.SourcePackage)
	w.str(tagRuntimeDeviceID, rt.DeviceID)
	w.u32(tagRuntimeRecordTotal, rt.RecordTotalNum)
	return w.finish(), nil
}

// DecodeRuntime unmarshals runtime metadata.
func (Codec) DecodeRuntime(b []byte) (*unified.Runtime, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	keyStr := getStr(fields, tagRuntimeKey)
	key, err := unified.ParseKey(keyStr)
	if err != nil {
		return nil, fmt.Errorf("%w: runtime key: %v", ErrMalformed, err)
	}
	rt := &unified.Runtime{
		Key:           key,
		IsPrivate:     getBool(fields, tagRuntimePrivate),
		CreatePackage: getStr(fields, tagRuntimeCreatePackage),
		SourcePackage: getStr(fields, tagRuntimeSourcePackage),
		DeviceID:      getStr(fields, tagRuntimeDeviceID),
	}
	if rt.CreateTime, err = getI64(fields, tagRuntimeCreateTime); err != nil {
		return nil, err
	}
	if rt.LastModifiedTime, err = getI64(fields, tagRuntimeModifiedTime); err != nil {
		return nil, err
	}
	if rt.RecordTotalNum, err = getU32(fields, tagRuntimeRecordTotal); err != nil {
		return nil, err
	}
	return rt, nil
}

// EncodeRecord marshals a record. The concrete kind must be one of the
// unified package's record types; anything else fails.
func (c Codec) EncodeRecord(r unified.Record) ([]byte, error) {
	if r == nil {
		return nil, errors.New("tlv: nil record")
	}
	var w writer
	w.i32(tagRecordType, int32(r.Type()))
	w.str(tagRecordUID, r.UID())

	switch rec := r.(type) {
	case *unified.Text:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
	case *unified.PlainText:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.str(tagRecordContent, rec.Content)
		w.str(tagRecordAbstract, rec.Abstract)
	case *unified.HTML:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.str(tagRecordHTMLContent, rec.HTMLContent)
		w.str(tagRecordPlainContent, rec.PlainContent)
	case *unified.Link:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.str(tagRecordURL, rec.URL)
		w.str(tagRecordDescription, rec.Description)
	case *unified.File:
		c.encodeFile(&w, rec)
	case *unified.Image:
		c.encodeFile(&w, &rec.File)
	case *unified.Video:
		c.encodeFile(&w, &rec.File)
	case *unified.Audio:
		c.encodeFile(&w, &rec.File)
	case *unified.Folder:
		c.encodeFile(&w, &rec.File)
	case *unified.SystemDefinedForm:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.i32(tagRecordFormID, rec.FormID)
		w.str(tagRecordFormName, rec.FormName)
		w.str(tagRecordBundleName, rec.BundleName)
		w.str(tagRecordAbilityName, rec.AbilityName)
		w.str(tagRecordModule, rec.Module)
	case *unified.SystemDefinedAppItem:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.str(tagRecordAppID, rec.AppID)
		w.str(tagRecordAppName, rec.AppName)
		w.str(tagRecordAppIconID, rec.AppIconID)
		w.str(tagRecordAppLabelID, rec.AppLabelID)
		w.str(tagRecordBundleName, rec.BundleName)
		w.str(tagRecordAbilityName, rec.AbilityName)
	case *unified.SystemDefinedPixelMap:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
		w.field(tagRecordRawData, rec.RawData)
	case *unified.SystemDefinedRecord:
		w.field(tagRecordDetails, encodeDetails(rec.Details))
	default:
		return nil, fmt.Errorf("tlv: unsupported record kind %T", r)
	}
	return w.finish(), nil
}

func (Codec) encodeFile(w *writer, f *unified.File) {
	w.field(tagRecordDetails, encodeDetails(f.Details))
	w.str(tagRecordURI, f.URI)
	w.str(tagRecordRemoteURI, f.RemoteURI)
}

// DecodeRecord unmarshals a record, dispatching on its type tag.
func (Codec) DecodeRecord(b []byte) (unified.Record, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	if _, ok := fields[tagRecordType]; !ok {
		return nil, fmt.Errorf("%w: record entry missing type tag", ErrMalformed)
	}
	typeTag, err := getI32(fields, tagRecordType)
	if err != nil {
		return nil, err
	}
	typ := unified.Type(typeTag)
	details, err := decodeDetails(fields[tagRecordDetails])
	if err != nil {
		return nil, err
	}

	var rec unified.Record
	switch typ {
	case unified.TypeText:
		rec = &unified.Text{Details: details}
	case unified.TypePlainText:
		r := &unified.PlainText{
			Content:  getStr(fields, tagRecordContent),
			Abstract: getStr(fields, tagRecordAbstract),
		}
		r.Details = details
		rec = r
	case unified.TypeHTML:
		r := &unified.HTML{
			HTMLContent:  getStr(fields, tagRecordHTMLContent),
			PlainContent: getStr(fields, tagRecordPlainContent),
		}
		r.Details = details
		rec = r
	case unified.TypeHyperlink:
		r := &unified.Link{
			URL:         getStr(fields, tagRecordURL),
			Description: getStr(fields, tagRecordDescription),
		}
		r.Details = details
		rec = r
	case unified.TypeFile:
		rec = decodeFile(fields, details)
	case unified.TypeImage:
		rec = &unified.Image{File: *decodeFile(fields, details)}
	case unified.TypeVideo:
		rec = &unified.Video{File: *decodeFile(fields, details)}
	case unified.TypeAudio:
		rec = &unified.Audio{File: *decodeFile(fields, details)}
	case unified.TypeFolder:
		rec = &unified.Folder{File: *decodeFile(fields, details)}
	case unified.TypeSystemDefinedRecord:
		rec = &unified.SystemDefinedRecord{Details: details}
	case unified.TypeSystemDefinedForm:
		r := &unified.SystemDefinedForm{
			FormName:    getStr(fields, tagRecordFormName),
			BundleName:  getStr(fields, tagRecordBundleName),
			AbilityName: getStr(fields, tagRecordAbilityName),
			Module:      getStr(fields, tagRecordModule),
		}
		if r.FormID, err = getI32(fields, tagRecordFormID); err != nil {
			return nil, err
		}
		r.Details = details
		rec = r
	case unified.TypeSystemDefinedAppItem:
		r := &unified.SystemDefinedAppItem{
			AppID:       getStr(fields, tagRecordAppID),
			AppName:     getStr(fields, tagRecordAppName),
			AppIconID:   getStr(fields, tagRecordAppIconID),
			AppLabelID:  getStr(fields, tagRecordAppLabelID),
			BundleName:  getStr(fields, tagRecordBundleName),
			AbilityName: getStr(fields, tagRecordAbilityName),
		}
		r.Details = details
		rec = r
	case unified.TypeSystemDefinedPixelMap:
		r := &unified.SystemDefinedPixelMap{}
		if raw, ok := fields[tagRecordRawData]; ok && len(raw) > 0 {
			r.RawData = append([]byte(nil), raw...)
		}
		r.Details = details
		rec = r
	default:
		return nil, fmt.Errorf("%w: unknown record type %d", ErrMalformed, typeTag)
	}
	rec.SetUID(getStr(fields, tagRecordUID))
	return rec, nil
}

func decodeFile(fields map[uint16][]byte, details map[string]string) *unified.File {
	return &unified.File{
		URI:       getStr(fields, tagRecordURI),
		RemoteURI: getStr(fields, tagRecordRemoteURI),
		Details:   details,
	}
}
