package model

// A Creator is a person credited on the wiki's creator page.
// UserID optionally links the creator to an account, 0 means no account.
type Creator struct {
	Base `msgpack:",inline" storm:"inline"`

	Name   string `json:"name"    msgpack:"name"`
	Avatar string `json:"avatar"  msgpack:"avatar"`
	Bio    string `json:"bio"     msgpack:"bio"`
	UserID int    `json:"user_id" msgpack:"user_id" storm:"index"`
}
