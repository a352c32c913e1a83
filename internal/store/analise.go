package store

import "github.com/joaowrlld/sicredi-gestor-insight/internal/models"

// Analises devolve a visão analítica de todas as carteiras: ocupação sobre o
// limite ideal, status (>=100% sobrecarregado, >=90% atenção) e
// ganhos/perdas acumulados no histórico de movimentações.
func (s *Store) Analises() []models.AnaliseGestor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ganhos := make(map[string]int)
	perdas := make(map[string]int)
	for _, m := range s.historico.Lista() {
		ganhos[m.GestorNovoID]++
		perdas[m.GestorAntigoID]++
	}

	out := make([]models.AnaliseGestor, 0, len(s.gestores))
	for _, g := range s.gestores {
		var ocupacao float64
		if g.LimiteIdeal > 0 {
			ocupacao = float64(g.AssociadosAtuais) / float64(g.LimiteIdeal) * 100
		}
		status := models.StatusNormal
		switch {
		case ocupacao >= 100:
			status = models.StatusSobrecarregado
		case ocupacao >= 90:
			status = models.StatusAtencao
		}
		out = append(out, models.AnaliseGestor{
			Gestor:             g,
			PercentualOcupacao: ocupacao,
			Status:             status,
			GanhosPeriodo:      ganhos[g.ID],
			PerdasPeriodo:      perdas[g.ID],
		})
	}
	return out
}
