// Package importer é a fronteira de carga: lê a planilha enviada (.xlsx),
// resolve os apelidos de coluna, classifica cada associado e troca a base do
// store de uma vez só.
package importer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/classifier"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/store"
)

var ErrPlanilhaVazia = errors.New("planilha sem linhas de dados")

type Importador struct {
	store *store.Store
	log   *slog.Logger
}

func New(s *store.Store, log *slog.Logger) *Importador {
	if log == nil {
		log = slog.Default()
	}
	return &Importador{store: s, log: log.With("cmp", "importer")}
}

type Resultado struct {
	Gestores   int `json:"gestores"`
	Associados int `json:"associados"`
	Ignorados  int `json:"ignorados"`
}

// linha crua da planilha, já com os campos resolvidos pelos apelidos
type linha struct {
	nome          string
	conta         string
	agencia       string
	gestor        string
	carteira      string
	segmento      string
	renda         float64
	investimentos float64
	idade         int
}

// Importar lê a primeira aba do arquivo. A primeira linha é o cabeçalho;
// campos ausentes valem 0/vazio em vez de derrubar a importação. O commit no
// store é uma única troca de base, atômica para quem lê.
func (imp *Importador) Importar(r io.Reader) (*Resultado, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir planilha: %w", err)
	}
	defer func() { _ = f.Close() }()

	abas := f.GetSheetList()
	if len(abas) == 0 {
		return nil, ErrPlanilhaVazia
	}
	rows, err := f.GetRows(abas[0])
	if err != nil {
		return nil, fmt.Errorf("ler aba %q: %w", abas[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrPlanilhaVazia
	}

	colunas := mapearColunas(rows[0])
	agora := time.Now().UTC().Format(time.RFC3339)

	gestoresPorChave := make(map[string]*models.Gestor)
	var ordemGestores []string
	var associados []models.Associado
	ignoradas := 0

	for _, row := range rows[1:] {
		l := extrairLinha(row, colunas)
		if l.gestor == "" && l.nome == "" {
			ignoradas++
			continue
		}

		seg, sub := classifier.Classificar(classifier.Atributos{
			SegmentoHint:  l.segmento,
			Renda:         l.renda,
			Investimentos: l.investimentos,
			Idade:         l.idade,
		})

		chave := l.gestor + "-" + l.agencia + "-" + l.carteira
		g, ok := gestoresPorChave[chave]
		if !ok {
			g = &models.Gestor{
				ID:          "gestor-" + chave,
				Nome:        l.gestor,
				Agencia:     l.agencia,
				Segmento:    seg,
				Subsegmento: sub,
				// limite desnormalizado da tabela vigente no momento da carga
				LimiteIdeal: imp.store.LimiteIdealPara(sub),
			}
			gestoresPorChave[chave] = g
			ordemGestores = append(ordemGestores, chave)
		}

		associados = append(associados, models.Associado{
			ID:            "assoc-" + uuid.NewString(),
			Nome:          l.nome,
			Conta:         l.conta,
			Segmento:      seg,
			Subsegmento:   sub,
			GestorID:      g.ID,
			Agencia:       l.agencia,
			Carteira:      l.carteira,
			Renda:         l.renda,
			Investimentos: l.investimentos,
			Idade:         l.idade,
			DataVinculo:   agora,
		})
	}

	gestores := make([]models.Gestor, 0, len(ordemGestores))
	for _, chave := range ordemGestores {
		gestores = append(gestores, *gestoresPorChave[chave])
	}
	imp.store.CarregarBase(gestores, associados)

	res := &Resultado{Gestores: len(gestores), Associados: len(associados), Ignorados: ignoradas}
	imp.log.Info("importacao_concluida", "gestores", res.Gestores, "associados", res.Associados, "ignoradas", res.Ignorados)
	return res, nil
}

// campos reconhecidos no cabeçalho, por nome normalizado
const (
	campoNome          = "nome"
	campoConta         = "conta"
	campoAgencia       = "agencia"
	campoGestor        = "gestor"
	campoCarteira      = "carteira"
	campoSegmento      = "segmento"
	campoSubsegmento   = "subsegmento"
	campoRenda         = "renda"
	campoInvestimentos = "investimentos"
	campoIdade         = "idade"
)

var apelidos = map[string]string{
	"associado":     campoNome,
	"nome":          campoNome,
	"nomeassociado": campoNome,
	"cliente":       campoNome,
	"conta":         campoConta,
	"numeroconta":   campoConta,
	"agencia":       campoAgencia,
	"codagencia":    campoAgencia,
	"gestor":        campoGestor,
	"nomegestor":    campoGestor,
	"carteira":      campoCarteira,
	"codcarteira":   campoCarteira,
	"segmento":      campoSegmento,
	"subsegmento":   campoSubsegmento,
	"renda":         campoRenda,
	"rendamensal":   campoRenda,
	"investimentos": campoInvestimentos,
	"investimento":  campoInvestimentos,
	"idade":         campoIdade,
}

// mapearColunas resolve o cabeçalho para índices de coluna; a primeira
// ocorrência de cada campo vence.
func mapearColunas(cabecalho []string) map[string]int {
	colunas := make(map[string]int)
	for i, celula := range cabecalho {
		campo, ok := apelidos[normalizar(celula)]
		if !ok {
			continue
		}
		if _, jaVisto := colunas[campo]; !jaVisto {
			colunas[campo] = i
		}
	}
	return colunas
}

var acentos = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// normalizar deixa o nome da coluna comparável: minúsculas, sem acento e sem
// separadores (espaço, _, -, .).
func normalizar(s string) string {
	s = acentos.Replace(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '\t', '_', '-', '.', '/':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extrairLinha(row []string, colunas map[string]int) linha {
	celula := func(campo string) string {
		i, ok := colunas[campo]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return linha{
		nome:          celula(campoNome),
		conta:         celula(campoConta),
		agencia:       celula(campoAgencia),
		gestor:        celula(campoGestor),
		carteira:      celula(campoCarteira),
		segmento:      celula(campoSegmento),
		renda:         parseValor(celula(campoRenda)),
		investimentos: parseValor(celula(campoInvestimentos)),
		idade:         parseInteiro(celula(campoIdade)),
	}
}

// parseValor aceita tanto ponto decimal quanto o formato brasileiro com
// vírgula (1.234,56); valor ilegível vale 0.
func parseValor(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInteiro(s string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return 0
}
