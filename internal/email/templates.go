package email

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	texttpl "text/template"
)

// ResetVars son las variables del mail de reset.
type ResetVars struct {
	Username string
	Link     string
	TTL      string
}

const defaultResetHTML = `<p>Hola {{.Username}},</p>
<p>Pediste restablecer tu contraseña. Entrá al siguiente link para elegir una nueva:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>El link vence en {{.TTL}} y sirve una sola vez. Si no fuiste vos, ignorá este mail.</p>`

const defaultResetTXT = `Hola {{.Username}},

Pediste restablecer tu contraseña. Entrá al siguiente link para elegir una nueva:

{{.Link}}

El link vence en {{.TTL}} y sirve una sola vez. Si no fuiste vos, ignorá este mail.`

type Templates struct {
	resetHTML *template.Template
	resetTXT  *texttpl.Template
}

// LoadTemplates carga reset_password.{html,txt} desde dir, o usa los
// defaults embebidos si dir viene vacío o los archivos no están.
func LoadTemplates(dir string) (*Templates, error) {
	htmlSrc, txtSrc := defaultResetHTML, defaultResetTXT
	if dir != "" {
		if b, err := os.ReadFile(filepath.Join(dir, "reset_password.html")); err == nil {
			htmlSrc = string(b)
		}
		if b, err := os.ReadFile(filepath.Join(dir, "reset_password.txt")); err == nil {
			txtSrc = string(b)
		}
	}
	h, err := template.New("reset_html").Parse(htmlSrc)
	if err != nil {
		return nil, err
	}
	t, err := texttpl.New("reset_txt").Parse(txtSrc)
	if err != nil {
		return nil, err
	}
	return &Templates{resetHTML: h, resetTXT: t}, nil
}

// RenderReset devuelve los dos cuerpos del mail de reset.
func (t *Templates) RenderReset(vars ResetVars) (htmlBody, textBody string, err error) {
	var hb, tb bytes.Buffer
	if err := t.resetHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	if err := t.resetTXT.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
