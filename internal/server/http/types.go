package httpserver

import (
	"fmt"

	"github.com/laiyoufafa/distributeddatamgr-udmf/pkg/unified"
)

// Wire shapes for the JSON data API. Records travel as a flat union
// with a "type" discriminator; unused fields are omitted.

type wireRuntime struct {
	Key              string `json:"key"`
	IsPrivate        bool   `json:"isPrivate,omitempty"`
	CreateTime       int64  `json:"createTime,omitempty"`
	LastModifiedTime int64  `json:"lastModifiedTime,omitempty"`
	CreatePackage    string `json:"createPackage,omitempty"`
	SourcePackage    string `json:"sourcePackage,omitempty"`
	DeviceID         string `json:"deviceId,omitempty"`
	RecordTotalNum   uint32 `json:"recordTotalNum,omitempty"`
}

type wireRecord struct {
	Type    string            `json:"type"`
	UID     string            `json:"uid,omitempty"`
	Details map[string]string `json:"details,omitempty"`

	Content  string `json:"content,omitempty"`
	Abstract string `json:"abstract,omitempty"`

	HTMLContent  string `json:"htmlContent,omitempty"`
	PlainContent string `json:"plainContent,omitempty"`

	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`

	URI       string `json:"uri,omitempty"`
	RemoteURI string `json:"remoteUri,omitempty"`

	FormID      int32  `json:"formId,omitempty"`
	FormName    string `json:"formName,omitempty"`
	BundleName  string `json:"bundleName,omitempty"`
	AbilityName string `json:"abilityName,omitempty"`
	Module      string `json:"module,omitempty"`

	AppID      string `json:"appId,omitempty"`
	AppName    string `json:"appName,omitempty"`
	AppIconID  string `json:"appIconId,omitempty"`
	AppLabelID string `json:"appLabelId,omitempty"`

	RawData []byte `json:"rawData,omitempty"`
}

type wireData struct {
	Runtime *wireRuntime `json:"runtime,omitempty"`
	Records []wireRecord `json:"records,omitempty"`
}

// Record type discriminators.
const (
	kindText          = "text"
	kindPlainText     = "plain-text"
	kindHTML          = "html"
	kindHyperlink     = "hyperlink"
	kindFile          = "file"
	kindImage         = "image"
	kindVideo         = "video"
	kindAudio         = "audio"
	kindFolder        = "folder"
	kindSystemDefined = "system-defined"
	kindForm          = "form"
	kindAppItem       = "app-item"
	kindPixelMap      = "pixel-map"
)

func runtimeToWire(rt *unified.Runtime) *wireRuntime {
	if rt == nil {
		return nil
	}
	return &wireRuntime{
		Key:              rt.Key.String(),
		IsPrivate:        rt.IsPrivate,
		CreateTime:       rt.CreateTime,
		LastModifiedTime: rt.LastModifiedTime,
		CreatePackage:    rt.CreatePackage,
		SourcePackage:    rt.SourcePackage,
		DeviceID:         rt.DeviceID,
		RecordTotalNum:   rt.RecordTotalNum,
	}
}

func dataToWire(data *unified.Data) (wireData, error) {
	out := wireData{Runtime: runtimeToWire(data.Runtime)}
	for _, r := range data.Records {
		w, err := recordToWire(r)
		if err != nil {
			return wireData{}, err
		}
		out.Records = append(out.Records, w)
	}
	return out, nil
}

func recordToWire(r unified.Record) (wireRecord, error) {
	switch t := r.(type) {
	case *unified.PlainText:
		return wireRecord{Type: kindPlainText, UID: t.UID(), Details: t.Details,
			Content: t.Content, Abstract: t.Abstract}, nil
	case *unified.HTML:
		return wireRecord{Type: kindHTML, UID: t.UID(), Details: t.Details,
			HTMLContent: t.HTMLContent, PlainContent: t.PlainContent}, nil
	case *unified.Link:
		return wireRecord{Type: kindHyperlink, UID: t.UID(), Details: t.Details,
			URL: t.URL, Description: t.Description}, nil
	case *unified.Text:
		return wireRecord{Type: kindText, UID: t.UID(), Details: t.Details}, nil
	case *unified.Image:
		return wireRecord{Type: kindImage, UID: t.UID(), Details: t.Details,
			URI: t.URI, RemoteURI: t.RemoteURI}, nil
	case *unified.Video:
		return wireRecord{Type: kindVideo, UID: t.UID(), Details: t.Details,
			URI: t.URI, RemoteURI: t.RemoteURI}, nil
	case *unified.Audio:
		return wireRecord{Type: kindAudio, UID: t.UID(), Details: t.Details,
			URI: t.URI, RemoteURI: t.RemoteURI}, nil
	case *unified.Folder:
		return wireRecord{Type: kindFolder, UID: t.UID(), Details: t.Details,
			URI: t.URI, RemoteURI: t.RemoteURI}, nil
	case *unified.File:
		return wireRecord{Type: kindFile, UID: t.UID(), Details: t.Details,
			URI: t.URI, RemoteURI: t.RemoteURI}, nil
	case *unified.SystemDefinedForm:
		return wireRecord{Type: kindForm, UID: t.UID(), Details: t.Details,
			FormID: t.FormID, FormName: t.FormName, BundleName: t.BundleName,
			AbilityName: t.AbilityName, Module: t.Module}, nil
	case *unified.SystemDefinedAppItem:
		return wireRecord{Type: kindAppItem, UID: t.UID(), Details: t.Details,
			AppID: t.AppID, AppName: t.AppName, AppIconID: t.AppIconID,
			AppLabelID: t.AppLabelID, BundleName: t.BundleName, AbilityName: t.AbilityName}, nil
	case *unified.SystemDefinedPixelMap:
		return wireRecord{Type: kindPixelMap, UID: t.UID(), Details: t.Details,
			RawData: t.RawData}, nil
	case *unified.SystemDefinedRecord:
		return wireRecord{Type: kindSystemDefined, UID: t.UID(), Details: t.Details}, nil
	default:
		return wireRecord{}, fmt.Errorf("unsupported record kind %T", r)
	}
}

func recordFromWire(w wireRecord) (unified.Record, error) {
	var rec unified.Record
	switch w.Type {
	case kindPlainText:
		rec = &unified.PlainText{Text: unified.Text{Details: w.Details},
			Content: w.Content, Abstract: w.Abstract}
	case kindHTML:
		rec = &unified.HTML{Text: unified.Text{Details: w.Details},
			HTMLContent: w.HTMLContent, PlainContent: w.PlainContent}
	case kindHyperlink:
		rec = &unified.Link{Text: unified.Text{Details: w.Details},
			URL: w.URL, Description: w.Description}
	case kindText:
		rec = &unified.Text{Details: w.Details}
	case kindFile:
		rec = &unified.File{URI: w.URI, RemoteURI: w.RemoteURI, Details: w.Details}
	case kindImage:
		rec = &unified.Image{File: unified.File{URI: w.URI, RemoteURI: w.RemoteURI, Details: w.Details}}
	case kindVideo:
		rec = &unified.Video{File: unified.File{URI: w.URI, RemoteURI: w.RemoteURI, Details: w.Details}}
	case kindAudio:
		rec = &unified.Audio{File: unified.File{URI: w.URI, RemoteURI: w.RemoteURI, Details: w.Details}}
	case kindFolder:
		rec = &unified.Folder{File: unified.File{URI: w.URI, RemoteURI: w.RemoteURI, Details: w.Details}}
	case kindSystemDefined:
		rec = &unified.SystemDefinedRecord{Details: w.Details}
	case kindForm:
		rec = &unified.SystemDefinedForm{
			SystemDefinedRecord: unified.SystemDefinedRecord{Details: w.Details},
			FormID:              w.FormID, FormName: w.FormName, BundleName: w.BundleName,
			AbilityName: w.AbilityName, Module: w.Module}
	case kindAppItem:
		rec = &unified.SystemDefinedAppItem{
			SystemDefinedRecord: unified.SystemDefinedRecord{Details: w.Details},
			AppID:               w.AppID, AppName: w.AppName, AppIconID: w.AppIconID,
			AppLabelID: w.AppLabelID, BundleName: w.BundleName, AbilityName: w.AbilityName}
	case kindPixelMap:
		rec = &unified.SystemDefinedPixelMap{
			SystemDefinedRecord: unified.SystemDefinedRecord{Details: w.Details},
			RawData:             w.RawData}
	default:
		return nil, fmt.Errorf("unknown record type %q", w.Type)
	}
	if w.UID != "" {
		rec.SetUID(w.UID)
	}
	return rec, nil
}
