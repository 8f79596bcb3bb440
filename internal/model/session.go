package model

import (
	"time"
)

// A Session represents a database record.
// Its token is the `jti` of the JWT handed to the client, so deleting the record revokes the JWT.
type Session struct {
	Base `msgpack:",inline" storm:"inline"`

	ExpireAt  time.Time `json:"expire_at"  msgpack:"expire_at"`
	UserID    int       `json:"user_id"    msgpack:"user_id"    storm:"index"`
	UserAgent string    `json:"user_agent" msgpack:"user_agent"`
	Token     string    `json:"-"          msgpack:"token"      storm:"unique" bun:",unique,notnull"`
}
