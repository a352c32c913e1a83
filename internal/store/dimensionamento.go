package store

import (
	"errors"
	"fmt"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// ErrDimensionamentoInvalido indica entrada malformada em ReplaceDimensionamento;
// a tabela anterior é mantida.
var ErrDimensionamentoInvalido = errors.New("dimensionamento invalido")

// DimensionamentoPadrao é a tabela de referência de limites ideais por
// subsegmento, semeada na criação do store.
func DimensionamentoPadrao() []models.DimensionamentoConfig {
	return []models.DimensionamentoConfig{
		{Segmento: models.SegmentoAgro, Subsegmento: models.SubAgI, LimiteIdeal: 250},
		{Segmento: models.SegmentoAgro, Subsegmento: models.SubAgII, LimiteIdeal: 200},
		{Segmento: models.SegmentoAgro, Subsegmento: models.SubAgIII, LimiteIdeal: 120},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, LimiteIdeal: 10000},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFII, LimiteIdeal: 2500},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFIII, LimiteIdeal: 450},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFIV, LimiteIdeal: 300},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFV, LimiteIdeal: 150},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFVI, LimiteIdeal: 60},
		{Segmento: models.SegmentoPF, Subsegmento: models.SubPFMelhorIdade, LimiteIdeal: 2500},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubMEI, LimiteIdeal: 500},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubE1, LimiteIdeal: 500},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubE2, LimiteIdeal: 400},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubE3, LimiteIdeal: 300},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubE4, LimiteIdeal: 150},
		{Segmento: models.SegmentoPJ, Subsegmento: models.SubE5, LimiteIdeal: 90},
	}
}

func (s *Store) Dimensionamento() []models.DimensionamentoConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DimensionamentoConfig, len(s.dimensionamento))
	copy(out, s.dimensionamento)
	return out
}

// ReplaceDimensionamento valida e troca a tabela inteira de uma vez; nunca há
// patch parcial. Em erro, a tabela anterior permanece.
func (s *Store) ReplaceDimensionamento(cfg []models.DimensionamentoConfig) error {
	vistos := make(map[models.Segmento]map[models.Subsegmento]bool)
	for _, c := range cfg {
		if !c.Segmento.Valido() {
			return fmt.Errorf("%w: segmento %q", ErrDimensionamentoInvalido, c.Segmento)
		}
		if !c.Subsegmento.Pertence(c.Segmento) {
			return fmt.Errorf("%w: subsegmento %q nao pertence a %q", ErrDimensionamentoInvalido, c.Subsegmento, c.Segmento)
		}
		if c.LimiteIdeal < 0 {
			return fmt.Errorf("%w: limite ideal negativo em %q", ErrDimensionamentoInvalido, c.Subsegmento)
		}
		if vistos[c.Segmento] == nil {
			vistos[c.Segmento] = make(map[models.Subsegmento]bool)
		}
		if vistos[c.Segmento][c.Subsegmento] {
			return fmt.Errorf("%w: entrada duplicada para %q", ErrDimensionamentoInvalido, c.Subsegmento)
		}
		vistos[c.Segmento][c.Subsegmento] = true
	}

	s.mu.Lock()
	s.dimensionamento = make([]models.DimensionamentoConfig, len(cfg))
	copy(s.dimensionamento, cfg)
	est := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("dimensionamento_substituido", "entradas", len(cfg))
	s.notificar(est)
	return nil
}

// LimiteIdealPara resolve o limite configurado para um subsegmento; sem
// entrada na tabela vale 100.
func (s *Store) LimiteIdealPara(sub models.Subsegmento) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limiteIdealParaLocked(sub)
}

func (s *Store) limiteIdealParaLocked(sub models.Subsegmento) int {
	for _, c := range s.dimensionamento {
		if c.Subsegmento == sub {
			return c.LimiteIdeal
		}
	}
	return 100
}
