// Package ledger guarda o histórico de movimentações: somente inclusão, sem
// edição nem remoção. A ordem é da mais recente para a mais antiga.
package ledger

import "github.com/joaowrlld/sicredi-gestor-insight/internal/models"

type Ledger struct {
	movimentacoes []models.Movimentacao
}

func New() *Ledger {
	return &Ledger{}
}

// Registrar inclui um lote de movimentações no topo do histórico, preservando
// a ordem interna do lote.
func (l *Ledger) Registrar(movs ...models.Movimentacao) {
	if len(movs) == 0 {
		return
	}
	novo := make([]models.Movimentacao, 0, len(movs)+len(l.movimentacoes))
	novo = append(novo, movs...)
	novo = append(novo, l.movimentacoes...)
	l.movimentacoes = novo
}

// Lista devolve uma cópia do histórico, mais recente primeiro.
func (l *Ledger) Lista() []models.Movimentacao {
	out := make([]models.Movimentacao, len(l.movimentacoes))
	copy(out, l.movimentacoes)
	return out
}

func (l *Ledger) Tamanho() int {
	return len(l.movimentacoes)
}

// Substituir troca o histórico inteiro; usado só na restauração de um estado
// persistido.
func (l *Ledger) Substituir(movs []models.Movimentacao) {
	l.movimentacoes = make([]models.Movimentacao, len(movs))
	copy(l.movimentacoes, movs)
}
