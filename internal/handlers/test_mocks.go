package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/broker"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/importer"
)

type impMock struct {
	ImportarFn func(r io.Reader) (*importer.Resultado, error)
}

func (m *impMock) Importar(r io.Reader) (*importer.Resultado, error) {
	if m.ImportarFn == nil {
		return nil, errors.New("ImportarFn not set")
	}
	return m.ImportarFn(r)
}

type pubMock struct {
	PublicarFn func(ctx context.Context, ev broker.Evento) error
	CloseFn    func() error
}

func (p *pubMock) PublicarEvento(ctx context.Context, ev broker.Evento) error {
	if p.PublicarFn == nil {
		return nil
	}
	return p.PublicarFn(ctx, ev)
}
func (p *pubMock) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}
