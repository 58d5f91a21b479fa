package mail

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"github.com/danevairena/Bookstore/models"
)

const resetSubject = "[Bookstore] Reset Your Password"

var resetText = template.Must(template.New("reset_password.txt").Parse(`Dear {{.User.Username}},

To reset your password click on the following link:

{{.Link}}

If you have not requested a password reset simply ignore this message.

Sincerely,

The Bookstore Team
`))

var resetHTML = htmltemplate.Must(htmltemplate.New("reset_password.html").Parse(`<p>Dear {{.User.Username}},</p>
<p>
    To reset your password
    <a href="{{.Link}}">click here</a>.
</p>
<p>Alternatively, you can paste the following link in your browser's address bar:</p>
<p>{{.Link}}</p>
<p>If you have not requested a password reset simply ignore this message.</p>
<p>Sincerely,</p>
<p>The Bookstore Team</p>
`))

type resetData struct {
	User *models.User
	Link string
}

// PasswordResetEmail renders the reset email for user. link is the URL the
// user follows to pick a new password.
func PasswordResetEmail(user *models.User, link, sender string) (Email, error) {
	data := resetData{User: user, Link: link}

	var text bytes.Buffer
	if err := resetText.Execute(&text, data); err != nil {
		return Email{}, err
	}
	var html bytes.Buffer
	if err := resetHTML.Execute(&html, data); err != nil {
		return Email{}, err
	}

	return Email{
		From:    sender,
		To:      user.Email,
		ToName:  user.Username,
		Subject: resetSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
