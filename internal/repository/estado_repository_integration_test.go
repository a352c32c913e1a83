//go:build integration
// +build integration

package repository

/*
	Para Rodar: go test -tags=integration -v ./internal/repository -run TestEstadoRepository_Integration -count=1

	obs: Rodar todos os de integração: go test -tags=integration -v ./... -count=1
*/

import (
	"context"
	"testing"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/db"
	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
)

// Exercita: Carregar (vazio) -> Salvar -> Carregar -> Salvar (substitui) -> Carregar
func TestEstadoRepository_Integration_SalvarCarregar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Sobe Mongo real
	mongoC, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:7"))
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(ctx) })

	uri, err := mongoC.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("conn string: %v", err)
	}

	client, err := db.NewMongoClient(uri)
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	database := client.Database("testdb")
	repo := NewEstadoRepository(database)

	// 1) Primeira execução: nada salvo
	_, found, err := repo.Carregar(ctx)
	if err != nil {
		t.Fatalf("carregar vazio: %v", err)
	}
	if found {
		t.Fatalf("esperava banco vazio na primeira carga")
	}

	// 2) Salvar um snapshot
	est := models.Estado{
		Gestores: []models.Gestor{
			{ID: "gestor-ana-0101-c1", Nome: "Ana", Agencia: "0101", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, AssociadosAtuais: 1, LimiteIdeal: 450},
		},
		Associados: []models.Associado{
			{ID: "assoc-1", Nome: "Maria", Conta: "12345", Segmento: models.SegmentoPF, Subsegmento: models.SubPFI, GestorID: "gestor-ana-0101-c1", Agencia: "0101"},
		},
	}
	if err := repo.Salvar(ctx, est); err != nil {
		t.Fatalf("salvar: %v", err)
	}

	got, found, err := repo.Carregar(ctx)
	if err != nil {
		t.Fatalf("carregar: %v", err)
	}
	if !found {
		t.Fatalf("esperava snapshot gravado")
	}
	if len(got.Gestores) != 1 || got.Gestores[0].Nome != "Ana" {
		t.Fatalf("gestores mismatch: %#v", got.Gestores)
	}
	if len(got.Associados) != 1 || got.Associados[0].GestorID != "gestor-ana-0101-c1" {
		t.Fatalf("associados mismatch: %#v", got.Associados)
	}

	// 3) Salvar de novo substitui o documento inteiro
	est.Associados = nil
	est.Movimentacoes = []models.Movimentacao{
		{ID: "mov-1", AssociadoID: "assoc-1", AssociadoNome: "Maria", GestorNovoID: "gestor-ana-0101-c1", Motivo: "Realocação via matriz"},
	}
	if err := repo.Salvar(ctx, est); err != nil {
		t.Fatalf("salvar 2: %v", err)
	}
	got2, _, err := repo.Carregar(ctx)
	if err != nil {
		t.Fatalf("carregar 2: %v", err)
	}
	if len(got2.Associados) != 0 {
		t.Fatalf("esperava associados substituídos, veio %#v", got2.Associados)
	}
	if len(got2.Movimentacoes) != 1 || got2.Movimentacoes[0].Motivo != "Realocação via matriz" {
		t.Fatalf("movimentacoes mismatch: %#v", got2.Movimentacoes)
	}
}
