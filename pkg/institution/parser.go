// Package institution reads institution trees from XML.
//
// Any element carrying an instid attribute (or id, when instid is absent)
// is an institution. Its label comes from the first direct <name> child,
// then a name attribute, then the id itself. Nested institution elements
// become children, so a document like
//
//	<institutions>
//	  <institution instid="UNI"><name>University</name>
//	    <institution instid="PHYS"><name>Physics</name></institution>
//	  </institution>
//	</institutions>
//
// yields UNI at depth 0 and PHYS at depth 1, in document order.
package institution

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/evanschultz/instlist/pkg/models"
)

var (
	// ErrEmptyInput is returned when the XML text is blank.
	ErrEmptyInput = errors.New("enter the institution XML")

	// ErrInvalidXML is returned when the XML is not well formed.
	ErrInvalidXML = errors.New("invalid XML")
)

// validID matches the ids the exclusion list format can hold
var validID = regexp.MustCompile(`^\w+$`)

const (
	idAttr       = "instid"
	fallbackAttr = "id"
	nameElement  = "name"
)

// frame tracks one open element while walking the document
type frame struct {
	index     int  // position in the result, -1 when not an institution
	inName    bool // element is the <name> child of an institution
	nameFound bool
	name      *strings.Builder // set for a <name> child and everything below it
	label     string
}

// Parse reads an institution tree from XML text
func Parse(text string) ([]models.Institution, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	return Read(strings.NewReader(text))
}

// ParseFile reads an institution tree from an XML file
func ParseFile(path string) ([]models.Institution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Read decodes an institution tree from r. Duplicate ids keep their first
// occurrence; the repeated element and everything below it are skipped.
// Ids must consist of letters, digits and underscores.
func Read(r io.Reader) ([]models.Institution, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		result   []models.Institution
		stack    []*frame
		seen     = make(map[string]bool)
		depth    int // open institution elements
		skipping int // >0 while inside a skipped duplicate
		sawRoot  bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if skipping > 0 {
				skipping++
				continue
			}

			f := &frame{index: -1}
			if parent := innermostInstitution(stack); parent != nil && t.Name.Local == nameElement && !parent.nameFound && isDirectChild(stack, parent) {
				f.inName = true
				f.name = &strings.Builder{}
			} else if len(stack) > 0 {
				// markup inside <name> still contributes its text
				f.name = stack[len(stack)-1].name
			}

			if id, ok := institutionID(t); ok {
				if !validID.MatchString(id) {
					return nil, fmt.Errorf("%w: institution id %q may only contain letters, digits and underscores", ErrInvalidXML, id)
				}
				if seen[id] {
					skipping = 1
					continue
				}
				seen[id] = true

				result = append(result, models.Institution{ID: id, Depth: depth})
				f.index = len(result) - 1
				f.label = collapseSpace(attrValue(t, nameElement))
				depth++
			}
			stack = append(stack, f)

		case xml.CharData:
			if skipping > 0 || len(stack) == 0 {
				continue
			}
			if top := stack[len(stack)-1]; top.name != nil {
				top.name.Write(t)
			}

		case xml.EndElement:
			if skipping > 0 {
				skipping--
				continue
			}
			if len(stack) == 0 {
				continue
			}

			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.inName {
				if parent := innermostInstitution(stack); parent != nil {
					parent.nameFound = true
					parent.label = collapseSpace(f.name.String())
				}
			}

			if f.index >= 0 {
				label := f.label
				if label == "" {
					label = result[f.index].ID
				}
				result[f.index].Label = label
				depth--
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidXML)
	}
	return result, nil
}

// innermostInstitution returns the nearest enclosing institution frame
func innermostInstitution(stack []*frame) *frame {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].index >= 0 {
			return stack[i]
		}
	}
	return nil
}

func isDirectChild(stack []*frame, parent *frame) bool {
	return len(stack) > 0 && stack[len(stack)-1] == parent
}

func institutionID(t xml.StartElement) (string, bool) {
	if id := strings.TrimSpace(attrValue(t, idAttr)); id != "" {
		return id, true
	}
	if id := strings.TrimSpace(attrValue(t, fallbackAttr)); id != "" {
		return id, true
	}
	return "", false
}

func attrValue(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
