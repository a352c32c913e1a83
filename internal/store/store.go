// Package store mantém o estado relacional em memória (gestores, associados,
// agências), a tabela de dimensionamento e o histórico de movimentações.
//
// Toda mutação passa pelos pontos de entrada deste pacote (Realocar,
// ReconciliarMatriz, ReplaceDimensionamento, CarregarBase, Restaurar) sob um
// único lock de escritor exclusivo; nenhum outro caminho toca GestorID de
// associado ou contadores derivados. Leituras devolvem cópias.
package store

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/ledger"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

type Store struct {
	mu  sync.RWMutex
	log *slog.Logger

	gestores        []models.Gestor
	associados      []models.Associado
	agencias        []models.Agencia
	dimensionamento []models.DimensionamentoConfig
	historico       *ledger.Ledger

	subs []func(models.Estado)
}

func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		log:             log.With("cmp", "store"),
		dimensionamento: DimensionamentoPadrao(),
		historico:       ledger.New(),
	}
}

// Subscribe registra um observador de escrita: após cada mutação confirmada
// ele recebe o snapshot completo do estado. É assim que a persistência e a
// publicação de eventos enxergam o store, sem acesso direto às coleções.
func (s *Store) Subscribe(fn func(models.Estado)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// notificar roda fora do lock; o snapshot já foi tirado dentro dele.
func (s *Store) notificar(est models.Estado) {
	for _, fn := range s.subs {
		fn(est)
	}
}

// Gestores devolve uma cópia da coleção de gestores.
func (s *Store) Gestores() []models.Gestor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Gestor, len(s.gestores))
	copy(out, s.gestores)
	return out
}

func (s *Store) GestorPorID(id string) (models.Gestor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.gestorPorIDLocked(id)
	if !ok {
		return models.Gestor{}, false
	}
	return *g, true
}

func (s *Store) Associados() []models.Associado {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Associado, len(s.associados))
	copy(out, s.associados)
	return out
}

// AssociadosDoGestor lista a carteira de um gestor, na ordem de armazenamento.
func (s *Store) AssociadosDoGestor(gestorID string) []models.Associado {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Associado
	for _, a := range s.associados {
		if a.GestorID == gestorID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Agencias() []models.Agencia {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Agencia, len(s.agencias))
	copy(out, s.agencias)
	return out
}

// Movimentacoes devolve o histórico, mais recente primeiro.
func (s *Store) Movimentacoes() []models.Movimentacao {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historico.Lista()
}

// CarregarBase substitui as coleções de entidades inteiras (carga por
// importação). O histórico de movimentações é preservado; a troca visível é
// atômica, nunca se observa uma carga pela metade.
func (s *Store) CarregarBase(gestores []models.Gestor, associados []models.Associado) {
	s.mu.Lock()
	s.gestores = make([]models.Gestor, len(gestores))
	copy(s.gestores, gestores)
	s.associados = make([]models.Associado, len(associados))
	copy(s.associados, associados)
	s.recalcularDerivadosLocked()
	est := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("base_carregada", "gestores", len(gestores), "associados", len(associados))
	s.notificar(est)
}

// Snapshot tira a foto completa do estado: as cinco coleções.
func (s *Store) Snapshot() models.Estado {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Restaurar repõe um estado persistido. Chave ausente vira coleção vazia;
// dimensionamento ausente volta à tabela padrão. Não notifica observadores:
// restauração vem da própria persistência.
func (s *Store) Restaurar(est models.Estado) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gestores = append([]models.Gestor(nil), est.Gestores...)
	s.associados = append([]models.Associado(nil), est.Associados...)
	s.historico.Substituir(est.Movimentacoes)
	if len(est.Dimensionamento) > 0 {
		s.dimensionamento = append([]models.DimensionamentoConfig(nil), est.Dimensionamento...)
	} else {
		s.dimensionamento = DimensionamentoPadrao()
	}
	// agências são agregados derivados; recalcular vale mais que confiar no doc
	s.recalcularDerivadosLocked()
}

func (s *Store) snapshotLocked() models.Estado {
	return models.Estado{
		Gestores:        append([]models.Gestor(nil), s.gestores...),
		Associados:      append([]models.Associado(nil), s.associados...),
		Agencias:        append([]models.Agencia(nil), s.agencias...),
		Movimentacoes:   s.historico.Lista(),
		Dimensionamento: append([]models.DimensionamentoConfig(nil), s.dimensionamento...),
	}
}

func (s *Store) gestorPorIDLocked(id string) (*models.Gestor, bool) {
	for i := range s.gestores {
		if s.gestores[i].ID == id {
			return &s.gestores[i], true
		}
	}
	return nil, false
}

// recalcularDerivadosLocked refaz os caches derivados: AssociadosAtuais de
// todos os gestores (passada completa, invariante contador == |carteira|) e
// os agregados por agência.
func (s *Store) recalcularDerivadosLocked() {
	contagem := make(map[string]int, len(s.gestores))
	for _, a := range s.associados {
		contagem[a.GestorID]++
	}
	for i := range s.gestores {
		s.gestores[i].AssociadosAtuais = contagem[s.gestores[i].ID]
	}

	porNome := make(map[string]*models.Agencia)
	var nomes []string
	for i := range s.gestores {
		g := s.gestores[i]
		ag, ok := porNome[g.Agencia]
		if !ok {
			ag = &models.Agencia{
				ID:        "agencia-" + g.Agencia,
				Nome:      g.Agencia,
				Segmentos: map[models.Segmento]int{models.SegmentoAgro: 0, models.SegmentoPF: 0, models.SegmentoPJ: 0},
			}
			porNome[g.Agencia] = ag
			nomes = append(nomes, g.Agencia)
		}
		ag.Gestores = append(ag.Gestores, g)
		ag.TotalAssociados += g.AssociadosAtuais
		ag.Segmentos[g.Segmento] += g.AssociadosAtuais
	}
	sort.Strings(nomes)
	s.agencias = make([]models.Agencia, 0, len(nomes))
	for _, n := range nomes {
		s.agencias = append(s.agencias, *porNome[n])
	}
}
