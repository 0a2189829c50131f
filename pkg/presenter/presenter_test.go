package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*Presenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestErrorGoesToStderr(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "compiling plan")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] compiling plan: boom")

	errOut.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errOut.String())
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("plan written")
	p.Warning("no failure modes declared")
	p.Info("21 cases scaffolded")

	assert.Contains(t, out.String(), "✓ plan written")
	assert.Contains(t, out.String(), "⚠ no failure modes declared")
	assert.Contains(t, out.String(), "21 cases scaffolded")
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Dataset")
	assert.Contains(t, out.String(), "Dataset\n-------\n")
}

func TestQuietSuppressesAllButErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()
	assert.Empty(t, out.String())

	p.Error(errors.New("still shown"), "")
	assert.Contains(t, errOut.String(), "still shown")
}
