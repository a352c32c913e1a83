package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joaowrlld/sicredi-gestor-insight/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// O estado inteiro do dashboard vive em um único documento, substituído a
// cada gravação. Não há escrita parcial: quem grava já detém o snapshot
// completo produzido pelo store.
const estadoDocID = "estado-atual"

type EstadoRepository struct {
	coll *mongo.Collection
}

func NewEstadoRepository(db *mongo.Database) *EstadoRepository {
	return &EstadoRepository{coll: db.Collection("estados")}
}

type estadoDoc struct {
	ID           string        `bson:"_id"`
	Estado       models.Estado `bson:"estado"`
	AtualizadoEm time.Time     `bson:"atualizado_em"`
}

func (r *EstadoRepository) Salvar(ctx context.Context, est models.Estado) error {
	doc := estadoDoc{
		ID:           estadoDocID,
		Estado:       est,
		AtualizadoEm: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": estadoDocID}, doc, opts)
	return err
}

// Carregar devolve o último snapshot gravado. Sem documento salvo,
// devolve um estado vazio e found=false (primeira execução).
func (r *EstadoRepository) Carregar(ctx context.Context) (models.Estado, bool, error) {
	var doc estadoDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": estadoDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Estado{}, false, nil
	}
	if err != nil {
		return models.Estado{}, false, err
	}
	return doc.Estado, true, nil
}

// Persistor observa o store e grava cada snapshot notificado.
type Persistor struct {
	repo    *EstadoRepository
	log     *slog.Logger
	timeout time.Duration
}

func NewPersistor(repo *EstadoRepository, log *slog.Logger, timeout time.Duration) *Persistor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Persistor{repo: repo, log: log, timeout: timeout}
}

// Observar é registrado via store.Subscribe. Falha de gravação não
// interrompe a operação que gerou o snapshot: apenas loga.
func (p *Persistor) Observar(est models.Estado) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.repo.Salvar(ctx, est); err != nil {
		p.log.Error("falha ao persistir estado", "err", err)
	}
}
