package models

// Segmento é a categoria de topo de um associado.
type Segmento string

const (
	SegmentoAgro Segmento = "Agro"
	SegmentoPF   Segmento = "PF"
	SegmentoPJ   Segmento = "PJ"
)

// Subsegmento é a faixa dentro de um segmento. O conjunto válido depende do segmento.
type Subsegmento string

const (
	SubAgI   Subsegmento = "Ag I"
	SubAgII  Subsegmento = "Ag II"
	SubAgIII Subsegmento = "Ag III"

	SubPFI           Subsegmento = "PF I"
	SubPFII          Subsegmento = "PF II"
	SubPFIII         Subsegmento = "PF III"
	SubPFIV          Subsegmento = "PF IV"
	SubPFV           Subsegmento = "PF V"
	SubPFVI          Subsegmento = "PF VI"
	SubPFMelhorIdade Subsegmento = "PF Melhor Idade"

	SubMEI Subsegmento = "MEI"
	SubE1  Subsegmento = "E1"
	SubE2  Subsegmento = "E2"
	SubE3  Subsegmento = "E3"
	SubE4  Subsegmento = "E4"
	SubE5  Subsegmento = "E5"
)

var subsegmentosPorSegmento = map[Segmento][]Subsegmento{
	SegmentoAgro: {SubAgI, SubAgII, SubAgIII},
	SegmentoPF:   {SubPFI, SubPFII, SubPFIII, SubPFIV, SubPFV, SubPFVI, SubPFMelhorIdade},
	SegmentoPJ:   {SubMEI, SubE1, SubE2, SubE3, SubE4, SubE5},
}

func (s Segmento) Valido() bool {
	_, ok := subsegmentosPorSegmento[s]
	return ok
}

// Subsegmentos retorna o conjunto válido para o segmento, na ordem de referência.
func (s Segmento) Subsegmentos() []Subsegmento {
	subs := subsegmentosPorSegmento[s]
	out := make([]Subsegmento, len(subs))
	copy(out, subs)
	return out
}

// Pertence informa se o subsegmento faz parte do segmento.
// Invariante do modelo: associado.Subsegmento sempre pertence a associado.Segmento.
func (sub Subsegmento) Pertence(seg Segmento) bool {
	for _, s := range subsegmentosPorSegmento[seg] {
		if s == sub {
			return true
		}
	}
	return false
}

func Segmentos() []Segmento {
	return []Segmento{SegmentoAgro, SegmentoPF, SegmentoPJ}
}
