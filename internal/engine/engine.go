// Package engine contém o núcleo algorítmico da realocação: o cálculo de
// deltas por subsegmento e o pareamento guloso fonte->destino (problema de
// transporte balanceado). As funções daqui são puras; quem aplica o plano
// sobre o estado é o store.
package engine

import (
	"errors"
	"fmt"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// ErrGestorInexistente indica realocação para um gestor que não existe.
// Nada é mutado nesse caso.
var ErrGestorInexistente = errors.New("gestor de destino inexistente")

// DesbalanceErro indica que a matriz desejada não conserva o total de
// associados de um subsegmento (a soma dos deltas não fecha em zero). O
// pareamento guloso deixaria sobra/deficit sem par, então a reconciliação é
// rejeitada inteira.
type DesbalanceErro struct {
	Subsegmento models.Subsegmento
	Diferenca   int // desejado - original; positivo = associados "criados" na matriz
}

func (e *DesbalanceErro) Error() string {
	return fmt.Sprintf("matriz desbalanceada em %q: soma desejada difere da original em %+d", e.Subsegmento, e.Diferenca)
}

// InsuficienciaErro indica que um gestor fonte não tem associados suficientes
// no subsegmento para materializar um movimento planejado. A reconciliação
// falha inteira: nenhum movimento já calculado é aplicado.
type InsuficienciaErro struct {
	GestorID    string
	Subsegmento models.Subsegmento
	Faltam      int
}

func (e *InsuficienciaErro) Error() string {
	return fmt.Sprintf("gestor %s nao tem associados suficientes em %q (faltam %d)", e.GestorID, e.Subsegmento, e.Faltam)
}

// MovimentoPlanejado é uma aresta do pareamento: mover Quantidade associados
// do subsegmento de um gestor fonte para um gestor destino.
type MovimentoPlanejado struct {
	DeGestorID   string             `json:"deGestorId"`
	ParaGestorID string             `json:"paraGestorId"`
	Subsegmento  models.Subsegmento `json:"subsegmento"`
	Quantidade   int                `json:"quantidade"`
}

// PlanejarMatriz compara a matriz desejada com a original e devolve os
// movimentos necessários, subsegmento a subsegmento. Associados nunca trocam
// de subsegmento por aqui: cada subsegmento fecha suas próprias contas.
//
// ordemGestores define a ordem estável de varredura (o chamador ordena por
// id): a primeira fonte alimenta o primeiro destino. Célula ausente em
// desejado vale o original (célula não editada).
func PlanejarMatriz(
	ordemGestores []string,
	subsegmentos []models.Subsegmento,
	original, desejado map[string]map[models.Subsegmento]int,
) ([]MovimentoPlanejado, error) {
	var planos []MovimentoPlanejado

	for _, sub := range subsegmentos {
		deltas := make(map[string]int, len(ordemGestores))
		soma := 0
		for _, id := range ordemGestores {
			orig := original[id][sub]
			des, ok := desejado[id][sub]
			if !ok {
				des = orig
			}
			deltas[id] = des - orig
			soma += des - orig
		}
		if soma != 0 {
			return nil, &DesbalanceErro{Subsegmento: sub, Diferenca: soma}
		}
		planos = append(planos, parearSubsegmento(ordemGestores, deltas, sub)...)
	}
	return planos, nil
}

// fonte cede associados (delta negativo), destino recebe (delta positivo).
type fonte struct {
	id         string
	disponivel int
}

type destino struct {
	id      string
	demanda int
}

// parearSubsegmento faz o casamento guloso: toma min(disponível, demanda) do
// par corrente, registra o movimento e avança o lado que zerou. Como os
// deltas somam zero, toda oferta encontra demanda.
func parearSubsegmento(ordem []string, deltas map[string]int, sub models.Subsegmento) []MovimentoPlanejado {
	var fontes []fonte
	var destinos []destino
	for _, id := range ordem {
		switch d := deltas[id]; {
		case d < 0:
			fontes = append(fontes, fonte{id: id, disponivel: -d})
		case d > 0:
			destinos = append(destinos, destino{id: id, demanda: d})
		}
	}

	var movimentos []MovimentoPlanejado
	fi, di := 0, 0
	for fi < len(fontes) && di < len(destinos) {
		qtd := min(fontes[fi].disponivel, destinos[di].demanda)
		movimentos = append(movimentos, MovimentoPlanejado{
			DeGestorID:   fontes[fi].id,
			ParaGestorID: destinos[di].id,
			Subsegmento:  sub,
			Quantidade:   qtd,
		})
		fontes[fi].disponivel -= qtd
		destinos[di].demanda -= qtd
		if fontes[fi].disponivel == 0 {
			fi++
		}
		if destinos[di].demanda == 0 {
			di++
		}
	}
	return movimentos
}
