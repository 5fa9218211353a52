package junos

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

// Fields are the named values substituted into a request template. Values
// must be string, []string or an integer type; strings are XML-escaped
// before rendering.
type Fields map[string]any

// Merge returns a copy of f with every key of other set on top.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Text returns a field as text, or "" when absent.
func (f Fields) Text(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

const (
	deleteField = "delete"
	deleteAttr  = ` delete="delete"`
)

// parseTemplate compiles a request template. Missing fields are errors so a
// mistyped field name never renders a partial object.
func parseTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}

// render executes tmpl with escaped fields. When del is set the template's
// {{.delete}} slot receives the delete attribute.
func render(tmpl *template.Template, fields Fields, del bool) (string, error) {
	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		ev, err := escapeValue(v)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", k, err)
		}
		data[k] = ev
	}
	data[deleteField] = ""
	if del {
		data[deleteField] = deleteAttr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func escapeValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return escape(val), nil
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = escape(s)
		}
		return out, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case bool:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// secretElement matches the text of elements that carry credentials.
var secretElement = regexp.MustCompile(`(<(?:challenge-response|ascii-text|password)>)[^<]*(</)`)

// redact masks credential text in a request or response before it is logged.
func redact(doc string) string {
	return secretElement.ReplaceAllString(doc, "${1}****${2}")
}

// Envelopes.

func rpc(body string) string {
	return "<rpc>" + body + "</rpc>\n"
}

func loginRequest(username, password string) string {
	return rpc("<request-login><username>" + escape(username) + "</username>" +
		"<challenge-response>" + escape(password) + "</challenge-response></request-login>")
}

func openConfigurationRequest() string {
	return rpc("<open-configuration><private/></open-configuration>")
}

func closeConfigurationRequest() string {
	return rpc("<close-configuration/>")
}

func commitRequest() string {
	return rpc("<commit-configuration/>")
}

func loadRequest(config string) string {
	return rpc(`<load-configuration action="merge"><configuration>` + config + "</configuration></load-configuration>")
}

func getConfigurationRequest(filter string) string {
	return rpc(`<get-configuration database="candidate"><configuration>` + filter + "</configuration></get-configuration>")
}

func endSessionRequest() string {
	return rpc("<request-end-session/>")
}
