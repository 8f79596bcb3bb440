package model

// A File is an uploaded attachment.
// Path is the key of the blob in the storage backend.
type File struct {
	Base `msgpack:",inline" storm:"inline"`

	Name       string `json:"name"        msgpack:"name"`
	Path       string `json:"path"        msgpack:"path"        storm:"unique" bun:",unique,notnull"`
	Hash       string `json:"hash"        msgpack:"hash"        storm:"unique" bun:",unique,notnull"`
	MimeType   string `json:"mime_type"   msgpack:"mime_type"`
	Size       int64  `json:"size"        msgpack:"size"`
	UploaderID int    `json:"uploader_id" msgpack:"uploader_id" storm:"index"`
}
