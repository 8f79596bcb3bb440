package model

// A Setting holds the wiki configuration editable by administrators.
// Only one record exists; its presence marks the end of the first-use setup.
type Setting struct {
	Base `msgpack:",inline" storm:"inline"`

	SMTPServer   string `json:"smtp_server"   msgpack:"smtp_server"`
	SMTPPort     int    `json:"smtp_port"     msgpack:"smtp_port"`
	SMTPEmail    string `json:"smtp_email"    msgpack:"smtp_email"`
	SMTPPassword string `json:"smtp_password" msgpack:"smtp_password"`
	GoogleKey    string `json:"google_key"    msgpack:"google_key"`
}

// MailConfigured returns true when an SMTP server is set.
func (s *Setting) MailConfigured() bool {
	return s != nil && s.SMTPServer != "" && s.SMTPEmail != ""
}
