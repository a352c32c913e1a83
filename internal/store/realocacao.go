package store

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/engine"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// ErrAgenciaInexistente indica reconciliação contra uma agência sem gestores.
var ErrAgenciaInexistente = errors.New("agencia inexistente")

// MotivoMatriz é o motivo gravado nas movimentações geradas pela matriz.
const MotivoMatriz = "Realocação via matriz"

// Realocar transfere os associados informados para o gestor de destino.
//
// Ids de associado que não existem são ignorados em silêncio (leniência de
// contrato: o chamador pode mandar listas já defasadas). Gestor de destino
// inexistente falha com engine.ErrGestorInexistente sem mutar nada. Cada
// associado movido rende exatamente uma movimentação no histórico, todas do
// lote com o mesmo timestamp e motivo.
func (s *Store) Realocar(associadoIDs []string, gestorNovoID, motivo string) ([]models.Movimentacao, error) {
	s.mu.Lock()
	movs, err := s.realocarLocked(associadoIDs, gestorNovoID, motivo, time.Now().UTC())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	est := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("realocacao_aplicada", "associados", len(movs), "gestor_novo", gestorNovoID, "motivo", motivo)
	s.notificar(est)
	return movs, nil
}

func (s *Store) realocarLocked(associadoIDs []string, gestorNovoID, motivo string, agora time.Time) ([]models.Movimentacao, error) {
	gestorNovo, ok := s.gestorPorIDLocked(gestorNovoID)
	if !ok {
		return nil, engine.ErrGestorInexistente
	}

	alvo := make(map[string]bool, len(associadoIDs))
	for _, id := range associadoIDs {
		alvo[id] = true
	}

	var movs []models.Movimentacao
	for i := range s.associados {
		a := &s.associados[i]
		if !alvo[a.ID] {
			continue
		}

		gestorAntigoNome := "Desconhecido"
		if antigo, ok := s.gestorPorIDLocked(a.GestorID); ok {
			gestorAntigoNome = antigo.Nome
		}

		movs = append(movs, models.Movimentacao{
			ID:               "mov-" + uuid.NewString(),
			AssociadoID:      a.ID,
			AssociadoNome:    a.Nome,
			GestorAntigoID:   a.GestorID,
			GestorAntigoNome: gestorAntigoNome,
			GestorNovoID:     gestorNovo.ID,
			GestorNovoNome:   gestorNovo.Nome,
			AgenciaAntiga:    a.Agencia,
			AgenciaNova:      gestorNovo.Agencia,
			Data:             agora.Format(time.RFC3339),
			Motivo:           motivo,
		})

		a.GestorID = gestorNovo.ID
		a.Agencia = gestorNovo.Agencia
	}

	// passada completa: um lote pode ter mexido em vários gestores de uma vez
	s.recalcularDerivadosLocked()
	s.historico.Registrar(movs...)
	return movs, nil
}

// MatrizAtual monta a grade gestor × subsegmento de uma agência: os gestores
// em ordem estável de id, o universo de subsegmentos (segmentos dos gestores
// cruzados com a tabela de dimensionamento, ordenado) e a contagem corrente.
func (s *Store) MatrizAtual(agencia string) ([]models.Gestor, []models.Subsegmento, map[string]map[models.Subsegmento]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gestores, subs := s.universoMatrizLocked(agencia)
	if len(gestores) == 0 {
		return nil, nil, nil, ErrAgenciaInexistente
	}
	return gestores, subs, s.contagemMatrizLocked(gestores, subs), nil
}

func (s *Store) universoMatrizLocked(agencia string) ([]models.Gestor, []models.Subsegmento) {
	var gestores []models.Gestor
	segmentos := make(map[models.Segmento]bool)
	for _, g := range s.gestores {
		if g.Agencia == agencia {
			gestores = append(gestores, g)
			segmentos[g.Segmento] = true
		}
	}
	sort.Slice(gestores, func(i, j int) bool { return gestores[i].ID < gestores[j].ID })

	var subs []models.Subsegmento
	vistos := make(map[models.Subsegmento]bool)
	for _, d := range s.dimensionamento {
		if segmentos[d.Segmento] && !vistos[d.Subsegmento] {
			vistos[d.Subsegmento] = true
			subs = append(subs, d.Subsegmento)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
	return gestores, subs
}

func (s *Store) contagemMatrizLocked(gestores []models.Gestor, subs []models.Subsegmento) map[string]map[models.Subsegmento]int {
	matriz := make(map[string]map[models.Subsegmento]int, len(gestores))
	naAgencia := make(map[string]bool, len(gestores))
	for _, g := range gestores {
		matriz[g.ID] = make(map[models.Subsegmento]int, len(subs))
		for _, sub := range subs {
			matriz[g.ID][sub] = 0
		}
		naAgencia[g.ID] = true
	}
	for _, a := range s.associados {
		if naAgencia[a.GestorID] {
			matriz[a.GestorID][a.Subsegmento]++
		}
	}
	return matriz
}

// ReconciliarMatriz leva a agência da distribuição corrente para a desejada.
//
// O plano é calculado por subsegmento (engine.PlanejarMatriz), materializado
// em associados concretos (os N primeiros da carteira da fonte, na ordem de
// armazenamento) e só então aplicado — tudo sob o mesmo lock de escrita, de
// ponta a ponta. Qualquer falha de materialização aborta sem aplicar nada.
// A aplicação é agrupada por gestor de destino: um lote de movimentações por
// destino, todas com o mesmo timestamp e motivo MotivoMatriz.
func (s *Store) ReconciliarMatriz(agencia string, desejado map[string]map[models.Subsegmento]int) ([]engine.MovimentoPlanejado, error) {
	s.mu.Lock()

	gestores, subs := s.universoMatrizLocked(agencia)
	if len(gestores) == 0 {
		s.mu.Unlock()
		return nil, ErrAgenciaInexistente
	}
	ordem := make([]string, len(gestores))
	for i, g := range gestores {
		ordem[i] = g.ID
	}
	original := s.contagemMatrizLocked(gestores, subs)

	planos, err := engine.PlanejarMatriz(ordem, subs, original, desejado)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	idsPorDestino, ordemDestinos, err := s.materializarLocked(planos)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	agora := time.Now().UTC()
	total := 0
	for _, destino := range ordemDestinos {
		movs, err := s.realocarLocked(idsPorDestino[destino], destino, MotivoMatriz, agora)
		if err != nil {
			// destino veio da própria agência; não há como não existir aqui
			s.mu.Unlock()
			return nil, err
		}
		total += len(movs)
	}

	var aplicados []engine.MovimentoPlanejado
	for _, p := range planos {
		if p.Quantidade > 0 {
			aplicados = append(aplicados, p)
		}
	}
	est := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("matriz_reconciliada", "agencia", agencia, "movimentos", len(aplicados), "associados", total)
	s.notificar(est)
	return aplicados, nil
}

// materializarLocked resolve cada movimento planejado em ids concretos de
// associados, consumindo a carteira de cada fonte em sequência para que dois
// movimentos da mesma fonte não escolham o mesmo associado. Devolve os ids
// agrupados por destino, na ordem em que os destinos aparecem no plano.
func (s *Store) materializarLocked(planos []engine.MovimentoPlanejado) (map[string][]string, []string, error) {
	candidatos := make(map[string]map[models.Subsegmento][]string)
	consumido := make(map[string]map[models.Subsegmento]int)

	idsPorDestino := make(map[string][]string)
	var ordemDestinos []string

	for _, p := range planos {
		if p.Quantidade <= 0 {
			continue
		}

		if candidatos[p.DeGestorID] == nil {
			candidatos[p.DeGestorID] = make(map[models.Subsegmento][]string)
			consumido[p.DeGestorID] = make(map[models.Subsegmento]int)
		}
		cand, ok := candidatos[p.DeGestorID][p.Subsegmento]
		if !ok {
			for _, a := range s.associados {
				if a.GestorID == p.DeGestorID && a.Subsegmento == p.Subsegmento {
					cand = append(cand, a.ID)
				}
			}
			candidatos[p.DeGestorID][p.Subsegmento] = cand
		}

		usados := consumido[p.DeGestorID][p.Subsegmento]
		if len(cand)-usados < p.Quantidade {
			return nil, nil, &engine.InsuficienciaErro{
				GestorID:    p.DeGestorID,
				Subsegmento: p.Subsegmento,
				Faltam:      p.Quantidade - (len(cand) - usados),
			}
		}
		escolhidos := cand[usados : usados+p.Quantidade]
		consumido[p.DeGestorID][p.Subsegmento] = usados + p.Quantidade

		if _, ok := idsPorDestino[p.ParaGestorID]; !ok {
			ordemDestinos = append(ordemDestinos, p.ParaGestorID)
		}
		idsPorDestino[p.ParaGestorID] = append(idsPorDestino[p.ParaGestorID], escolhidos...)
	}
	return idsPorDestino, ordemDestinos, nil
}
