package serializer

import "github.com/mdouchement/bluewiki/internal/model"

// User serializes the render of a user.
func User(m *model.User) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
		"name":       m.Name,
		"email":      m.Email,
		"phone":      m.Phone,
		"role":       m.Role,
	}
}

// Users serializes the render of users.
func Users(m []*model.User) []map[string]interface{} {
	users := make([]map[string]interface{}, len(m))
	for i, u := range m {
		users[i] = User(u)
	}
	return users
}

// Setting serializes the render of the settings.
// The SMTP password is never rendered.
func Setting(m *model.Setting) map[string]interface{} {
	return map[string]interface{}{
		"smtp_server":       m.SMTPServer,
		"smtp_port":         m.SMTPPort,
		"smtp_email":        m.SMTPEmail,
		"smtp_password_set": m.SMTPPassword != "",
		"google_key":        m.GoogleKey,
		"updated_at":        m.UpdatedAt,
	}
}
