package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Document is a loaded SVG layout. The template instance is shared read-only
// across render workers; every frame mutates its own Clone.
type Document struct {
	xml    *etree.Document
	width  float64
	height float64
}

// Node is a drawable element of the layout, addressed by its id attribute.
type Node struct {
	el *etree.Element
}

// Load reads an SVG document from a file.
func Load(path string) (*Document, error) {
	xml := etree.NewDocument()
	if err := xml.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}
	return wrap(xml)
}

// Parse reads an SVG document from memory.
func Parse(data []byte) (*Document, error) {
	xml := etree.NewDocument()
	if err := xml.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("разбор svg: %w", err)
	}
	return wrap(xml)
}

func wrap(xml *etree.Document) (*Document, error) {
	root := xml.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("корневой элемент не svg")
	}

	w, h, err := canvasSize(root)
	if err != nil {
		return nil, err
	}

	return &Document{xml: xml, width: w, height: h}, nil
}

// canvasSize извлекает размеры холста из viewBox или из width/height.
func canvasSize(root *etree.Element) (float64, float64, error) {
	if vb := root.SelectAttrValue("viewBox", ""); vb != "" {
		fields := strings.Fields(vb)
		if len(fields) != 4 {
			return 0, 0, fmt.Errorf("некорректный viewBox %q", vb)
		}
		w, errW := strconv.ParseFloat(fields[2], 64)
		h, errH := strconv.ParseFloat(fields[3], 64)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("некорректный viewBox %q", vb)
		}
		return w, h, nil
	}

	w, errW := parseLength(root.SelectAttrValue("width", ""))
	h, errH := parseLength(root.SelectAttrValue("height", ""))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("у svg нет ни viewBox, ни width/height")
	}
	return w, h, nil
}

func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, fmt.Errorf("пустая длина")
	}
	return strconv.ParseFloat(s, 64)
}

// Clone returns a deep copy safe to mutate independently of the template.
func (d *Document) Clone() *Document {
	return &Document{xml: d.xml.Copy(), width: d.width, height: d.height}
}

// Size returns the canvas size in user units.
func (d *Document) Size() (width, height float64) {
	return d.width, d.height
}

// NodeByID resolves a node by its id attribute.
func (d *Document) NodeByID(id string) (*Node, bool) {
	el := findByID(d.xml.Root(), id)
	if el == nil {
		return nil, false
	}
	return &Node{el: el}, true
}

func findByID(el *etree.Element, id string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.SelectAttrValue("id", "") == id {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Bytes serializes the document for the rasterizer.
func (d *Document) Bytes() ([]byte, error) {
	return d.xml.WriteToBytes()
}

// ID returns the node's id attribute.
func (n *Node) ID() string {
	return n.el.SelectAttrValue("id", "")
}

// SetOpacity overwrites the node opacity, clamped to [0, 1].
func (n *Node) SetOpacity(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	n.el.CreateAttr("opacity", formatFloat(v))
}

// Translate shifts the node by appending to its transform chain, so the
// layout's own positioning stays intact.
func (n *Node) Translate(dx, dy float64) {
	tf := fmt.Sprintf("translate(%s %s)", formatFloat(dx), formatFloat(dy))
	if prev := n.el.SelectAttrValue("transform", ""); prev != "" {
		tf = prev + " " + tf
	}
	n.el.CreateAttr("transform", tf)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
