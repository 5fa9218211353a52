package junos

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Response markers.
const (
	markerReplyEnd         = "</rpc-reply>"
	markerNotAuthenticated = "not authenticated"
	markerLoginSuccess     = "<status>success</status>"
	markerCommitSuccess    = "<commit-success/>"
	markerLoadSuccess      = "<load-success/>"
	markerError            = "<xnm:error"
	markerGreeting         = "<junoscript"
)

func replyEnd(b []byte) int {
	i := bytes.Index(b, []byte(markerReplyEnd))
	if i < 0 {
		return -1
	}
	return i + len(markerReplyEnd)
}

func greetingEnd(b []byte) int {
	i := bytes.Index(b, []byte(markerGreeting))
	if i < 0 {
		return -1
	}
	j := bytes.IndexByte(b[i:], '>')
	if j < 0 {
		return -1
	}
	end := i + j + 1
	if end < len(b) && b[end] == '\n' {
		end++
	}
	return end
}

func isNotAuthenticated(resp []byte) bool {
	return bytes.Contains(resp, []byte(markerNotAuthenticated))
}

func contains(resp, marker string) bool {
	return strings.Contains(resp, marker)
}

// hasError reports whether the reply carries an xnm:error element.
func hasError(resp string) bool {
	return strings.Contains(resp, markerError)
}

// errorMessage returns the text of the first <message> element, falling
// back to the raw reply when none is present.
func errorMessage(resp string) string {
	if msgs := elementTexts(resp, "message"); len(msgs) > 0 {
		return strings.TrimSpace(msgs[0])
	}
	return strings.TrimSpace(resp)
}

// containsName reports whether the reply has a <name> element equal to name.
func containsName(resp, name string) bool {
	return strings.Contains(resp, "<name>"+escape(name)+"</name>")
}

// mentions reports whether token appears as complete element text anywhere in
// the reply, so that "10-0-0-5" does not match inside "trust-10-0-0-5".
func mentions(resp, token string) bool {
	return strings.Contains(resp, ">"+escape(token)+"<")
}

// elementTexts returns the character data of every element with the given
// local name, in document order.
func elementTexts(doc, local string) []string {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.CharsetReader = passthroughCharset

	var (
		out   []string
		depth int
		text  strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
			} else if t.Name.Local == local {
				depth = 1
				text.Reset()
			}
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, text.String())
			}
		}
	}
}

// zoneAddressReferenced reports whether a policy in doc uses the address
// book entry name of zone: as a source-address of a policy leaving zone, or
// as a destination-address of a policy entering it. Zone names precede the
// policies of their context.
func zoneAddressReferenced(doc, zone, name string) bool {
	dec := xml.NewDecoder(strings.NewReader(doc))
	dec.Strict = false
	dec.CharsetReader = passthroughCharset

	var (
		stack    []string
		text     strings.Builder
		from, to string
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "policy" && len(stack) > 0 && stack[len(stack)-1] == "policies" {
				from, to = "", ""
			}
			stack = append(stack, t.Name.Local)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			value := strings.TrimSpace(text.String())
			switch stack[len(stack)-1] {
			case "from-zone-name":
				from = value
			case "to-zone-name":
				to = value
			case "source-address":
				if from == zone && value == name {
					return true
				}
			case "destination-address":
				if to == zone && value == name {
					return true
				}
			}
			stack = stack[:len(stack)-1]
			text.Reset()
		}
	}
}

func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
