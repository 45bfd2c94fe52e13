package portal

import (
	"errors"
	"strings"
	"time"

	"github.com/ozo-extended/ozo-agent/internal/pkg/browser"
)

// fakePage is an in-memory browser.Page. Elements live in one map keyed by
// selector; an onGoto handler swaps them to model a different screen.
type fakePage struct {
	url      string
	visible  map[string]bool
	elements map[string]*fakeElement
	lists    map[string][]*fakeElement
	onClick  map[string]func(p *fakePage)
	onGoto   map[string]func(p *fakePage)
	clickErr map[string]error

	gotos   []string
	clicks  []string
	fills   map[string]string
	keys    []string
	dialogs []bool
	closed  int
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		visible:  map[string]bool{},
		elements: map[string]*fakeElement{},
		lists:    map[string][]*fakeElement{},
		onClick:  map[string]func(p *fakePage){},
		onGoto:   map[string]func(p *fakePage){},
		clickErr: map[string]error{},
		fills:    map[string]string{},
	}
}

func (p *fakePage) setCell(selector, text string) {
	p.elements[selector] = &fakeElement{page: p, name: selector, text: text, visible: true}
}

func (p *fakePage) clicked(selector string) int {
	n := 0
	for _, c := range p.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

func (p *fakePage) Goto(url string) error {
	p.gotos = append(p.gotos, url)
	if fn := p.onGoto[url]; fn != nil {
		p.url = url
		fn(p)
	}
	return nil
}

func (p *fakePage) WaitForLoad(browser.LoadState, time.Duration) error { return nil }

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) IsVisible(selector string) (bool, error) {
	return p.visible[selector], nil
}

func (p *fakePage) WaitVisible(selector string, _ time.Duration) (browser.Element, error) {
	for _, sel := range strings.Split(selector, ",") {
		sel = strings.TrimSpace(sel)
		if p.visible[sel] {
			if el, ok := p.elements[sel]; ok {
				return el, nil
			}
			return &fakeElement{page: p, name: sel, visible: true}, nil
		}
	}
	return nil, browser.ErrTimeout
}

func (p *fakePage) Fill(selector, value string) error {
	p.fills[selector] = value
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.clicks = append(p.clicks, selector)
	if err := p.clickErr[selector]; err != nil {
		return err
	}
	if fn := p.onClick[selector]; fn != nil {
		fn(p)
	}
	return nil
}

func (p *fakePage) Query(selector string) (browser.Element, error) {
	if el, ok := p.elements[selector]; ok {
		return el, nil
	}
	return nil, nil
}

func (p *fakePage) QueryAll(selector string) ([]browser.Element, error) {
	out := make([]browser.Element, 0, len(p.lists[selector]))
	for _, el := range p.lists[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (p *fakePage) PressKey(key string) error {
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePage) AcceptDialogs(accept bool) {
	p.dialogs = append(p.dialogs, accept)
}

func (p *fakePage) Wait(time.Duration) {}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

type fakeElement struct {
	page     *fakePage
	name     string
	text     string
	attrs    map[string]string
	visible  bool
	children map[string]*fakeElement
	rowText  string
	rowErr   error
	filled   string
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	v, ok := e.attrs[name]
	if !ok {
		return "", errors.New("no attribute " + name)
	}
	return v, nil
}

func (e *fakeElement) IsVisible() (bool, error) { return e.visible, nil }

func (e *fakeElement) Query(selector string) (browser.Element, error) {
	if el, ok := e.children[selector]; ok {
		return el, nil
	}
	return nil, nil
}

func (e *fakeElement) Click() error {
	return e.page.Click(e.name)
}

func (e *fakeElement) Fill(value string) error {
	e.filled = value
	e.page.fills[e.name] = value
	return nil
}

func (e *fakeElement) RowText() (string, error) { return e.rowText, e.rowErr }
