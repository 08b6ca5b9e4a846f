package email

import (
	"bytes"
	"context"
	"embed"
	htmltpl "html/template"
	texttpl "text/template"
	"time"

	"github.com/dropDatabas3/essgate/internal/observability/logger"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	TemplateDeviceReset     = "device_reset"
	TemplatePasswordChanged = "password_changed"
)

// NoticeVars variables de los avisos de seguridad.
type NoticeVars struct {
	EmployeeName string
	EmployeeID   string
	ActorID      string
	At           string
}

type noticeTemplates struct {
	subject string
	html    *htmltpl.Template
	text    *texttpl.Template
}

// Notifier envía avisos de seguridad. Los fallos se loguean y nunca se propagan.
type Notifier struct {
	sender    Sender
	templates map[string]noticeTemplates
	now       func() time.Time
}

func NewNotifier(sender Sender) (*Notifier, error) {
	n := &Notifier{
		sender:    sender,
		templates: map[string]noticeTemplates{},
		now:       time.Now,
	}
	subjects := map[string]string{
		TemplateDeviceReset:     "Your app device access was reset",
		TemplatePasswordChanged: "Your app password was changed",
	}
	for id, subject := range subjects {
		h, err := htmltpl.ParseFS(templatesFS, "templates/"+id+".html.tmpl")
		if err != nil {
			return nil, err
		}
		t, err := texttpl.ParseFS(templatesFS, "templates/"+id+".txt.tmpl")
		if err != nil {
			return nil, err
		}
		n.templates[id] = noticeTemplates{subject: subject, html: h, text: t}
	}
	return n, nil
}

// DeviceReset avisa al empleado que su dispositivo fue desvinculado.
func (n *Notifier) DeviceReset(ctx context.Context, to, employeeName, employeeID, actorID string) {
	n.notify(ctx, TemplateDeviceReset, to, NoticeVars{
		EmployeeName: employeeName, EmployeeID: employeeID, ActorID: actorID,
	})
}

// PasswordChanged avisa que cambió el password de la app.
func (n *Notifier) PasswordChanged(ctx context.Context, to, employeeName, employeeID string) {
	n.notify(ctx, TemplatePasswordChanged, to, NoticeVars{
		EmployeeName: employeeName, EmployeeID: employeeID,
	})
}

func (n *Notifier) notify(ctx context.Context, id, to string, vars NoticeVars) {
	if n == nil || to == "" {
		return
	}
	log := logger.From(ctx).With(logger.Component("email.notifier"), logger.String("template", id), logger.EmployeeID(vars.EmployeeID))
	tpl, ok := n.templates[id]
	if !ok {
		log.Warn("unknown notice template")
		return
	}
	vars.At = n.now().UTC().Format(time.RFC1123)

	var hb, tb bytes.Buffer
	if err := tpl.html.Execute(&hb, vars); err != nil {
		log.Warn("render html failed", logger.Err(err))
		return
	}
	if err := tpl.text.Execute(&tb, vars); err != nil {
		log.Warn("render text failed", logger.Err(err))
		return
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := n.sender.Send(sctx, to, tpl.subject, hb.String(), tb.String()); err != nil {
		log.Warn("security notice not sent", logger.Email(to), logger.Err(err))
		return
	}
	log.Debug("security notice sent", logger.Email(to))
}
