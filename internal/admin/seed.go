package admin

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/classifier"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/repository"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/store"
)

//go:embed seeds/carteiras.json
var carteirasJSON []byte

type seedItem struct {
	Nome          string  `json:"nome"`
	Conta         string  `json:"conta"`
	Gestor        string  `json:"gestor"`
	Agencia       string  `json:"agencia"`
	Carteira      string  `json:"carteira"`
	Segmento      string  `json:"segmento"`
	Renda         float64 `json:"renda"`
	Investimentos float64 `json:"investimentos"`
	Idade         int     `json:"idade"`
}

// SeedDemo troca a base corrente pelo conjunto de demonstração embutido e,
// se houver repositório, grava o snapshot resultante. Substitui a base
// inteira: rodar duas vezes dá no mesmo.
func SeedDemo(ctx context.Context, s *store.Store, repo *repository.EstadoRepository, log *slog.Logger) error {
	var items []seedItem
	if err := json.Unmarshal(carteirasJSON, &items); err != nil {
		return err
	}

	gestoresPorChave := make(map[string]*models.Gestor)
	var ordem []string
	var associados []models.Associado
	agora := time.Now().UTC().Format(time.RFC3339)

	for _, it := range items {
		seg, sub := classifier.Classificar(classifier.Atributos{
			SegmentoHint:  it.Segmento,
			Renda:         it.Renda,
			Investimentos: it.Investimentos,
			Idade:         it.Idade,
		})

		chave := it.Gestor + "-" + it.Agencia + "-" + it.Carteira
		g, ok := gestoresPorChave[chave]
		if !ok {
			g = &models.Gestor{
				ID:          "gestor-" + chave,
				Nome:        it.Gestor,
				Agencia:     it.Agencia,
				Segmento:    seg,
				Subsegmento: sub,
				LimiteIdeal: s.LimiteIdealPara(sub),
			}
			gestoresPorChave[chave] = g
			ordem = append(ordem, chave)
		}

		associados = append(associados, models.Associado{
			ID:            "assoc-" + uuid.NewString(),
			Nome:          it.Nome,
			Conta:         it.Conta,
			Segmento:      seg,
			Subsegmento:   sub,
			GestorID:      g.ID,
			Agencia:       it.Agencia,
			Carteira:      it.Carteira,
			Renda:         it.Renda,
			Investimentos: it.Investimentos,
			Idade:         it.Idade,
			DataVinculo:   agora,
		})
	}

	gestores := make([]models.Gestor, 0, len(ordem))
	for _, chave := range ordem {
		gestores = append(gestores, *gestoresPorChave[chave])
	}
	s.CarregarBase(gestores, associados)

	if repo != nil {
		if err := repo.Salvar(ctx, s.Snapshot()); err != nil {
			return err
		}
	}

	log.Info("seed_demo_done", "gestores", len(gestores), "associados", len(associados))
	return nil
}
