package models

// Gestor (account manager) é dono de uma carteira de associados.
// AssociadosAtuais é cache derivado: sempre recalculado após mutações no
// conjunto de associados, nunca editado direto.
// LimiteIdeal é desnormalizado da tabela de dimensionamento no momento da
// carga; mudar a tabela depois não altera gestores já criados.
type Gestor struct {
	ID               string      `bson:"_id" json:"id"`
	Nome             string      `bson:"nome" json:"nome"`
	Agencia          string      `bson:"agencia" json:"agencia"`
	Segmento         Segmento    `bson:"segmento" json:"segmento"`
	Subsegmento      Subsegmento `bson:"subsegmento" json:"subsegmento"`
	AssociadosAtuais int         `bson:"associados_atuais" json:"associadosAtuais"`
	LimiteIdeal      int         `bson:"limite_ideal" json:"limiteIdeal"`
}

// Associado pertence a exatamente um gestor por vez (GestorID obrigatório).
// Agencia é desnormalizada da agência do gestor dono e é sobrescrita em toda
// realocação.
type Associado struct {
	ID            string      `bson:"_id" json:"id"`
	Nome          string      `bson:"nome" json:"nome"`
	Conta         string      `bson:"conta" json:"conta"`
	Segmento      Segmento    `bson:"segmento" json:"segmento"`
	Subsegmento   Subsegmento `bson:"subsegmento" json:"subsegmento"`
	GestorID      string      `bson:"gestor_id" json:"gestorId"`
	Agencia       string      `bson:"agencia" json:"agencia"`
	Carteira      string      `bson:"carteira" json:"carteira"`
	Renda         float64     `bson:"renda" json:"renda"`
	Investimentos float64     `bson:"investimentos" json:"investimentos"`
	Idade         int         `bson:"idade" json:"idade"`
	DataVinculo   string      `bson:"data_vinculo" json:"dataVinculo"`
}

// Agencia é agregado derivado sobre os gestores/associados daquela agência.
type Agencia struct {
	ID              string           `bson:"_id" json:"id"`
	Nome            string           `bson:"nome" json:"nome"`
	Gestores        []Gestor         `bson:"gestores" json:"gestores"`
	TotalAssociados int              `bson:"total_associados" json:"totalAssociados"`
	Segmentos       map[Segmento]int `bson:"segmentos" json:"segmentos"`
}

// Movimentacao é o registro de auditoria de uma transferência. Imutável depois
// de gravada; a lista é ordenada da mais recente para a mais antiga.
type Movimentacao struct {
	ID               string `bson:"_id" json:"id"`
	AssociadoID      string `bson:"associado_id" json:"associadoId"`
	AssociadoNome    string `bson:"associado_nome" json:"associadoNome"`
	GestorAntigoID   string `bson:"gestor_antigo_id" json:"gestorAntigoId"`
	GestorAntigoNome string `bson:"gestor_antigo_nome" json:"gestorAntigoNome"`
	GestorNovoID     string `bson:"gestor_novo_id" json:"gestorNovoId"`
	GestorNovoNome   string `bson:"gestor_novo_nome" json:"gestorNovoNome"`
	AgenciaAntiga    string `bson:"agencia_antiga" json:"agenciaAntiga"`
	AgenciaNova      string `bson:"agencia_nova" json:"agenciaNova"`
	Data             string `bson:"data" json:"data"`
	Motivo           string `bson:"motivo,omitempty" json:"motivo,omitempty"`
}

// DimensionamentoConfig é uma linha da tabela de limites ideais por
// (segmento, subsegmento).
type DimensionamentoConfig struct {
	Segmento    Segmento    `bson:"segmento" json:"segmento"`
	Subsegmento Subsegmento `bson:"subsegmento" json:"subsegmento"`
	LimiteIdeal int         `bson:"limite_ideal" json:"limiteIdeal"`
}

// Estado é o documento de persistência: as cinco coleções do store em um único
// JSON. Na releitura, qualquer chave ausente vira coleção vazia/padrão.
type Estado struct {
	Gestores        []Gestor                `bson:"gestores,omitempty" json:"gestores,omitempty"`
	Associados      []Associado             `bson:"associados,omitempty" json:"associados,omitempty"`
	Agencias        []Agencia               `bson:"agencias,omitempty" json:"agencias,omitempty"`
	Movimentacoes   []Movimentacao          `bson:"movimentacoes,omitempty" json:"movimentacoes,omitempty"`
	Dimensionamento []DimensionamentoConfig `bson:"dimensionamento,omitempty" json:"dimensionamento,omitempty"`
}

// Status de ocupação de carteira.
const (
	StatusNormal         = "normal"
	StatusAtencao        = "atencao"
	StatusSobrecarregado = "sobrecarregado"
)

// AnaliseGestor é a visão analítica de uma carteira: ocupação sobre o limite
// ideal e ganhos/perdas derivados do histórico de movimentações.
type AnaliseGestor struct {
	Gestor             Gestor  `json:"gestor"`
	PercentualOcupacao float64 `json:"percentualOcupacao"`
	Status             string  `json:"status"`
	GanhosPeriodo      int     `json:"ganhosPeriodo"`
	PerdasPeriodo      int     `json:"perdasPeriodo"`
}
