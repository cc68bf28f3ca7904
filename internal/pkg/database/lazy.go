package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Opener abre um novo pool de conexões.
type Opener func(ctx context.Context) (*sql.DB, error)

// OpenTimeout limita a abertura do pool, independente de quem a disparou.
const OpenTimeout = 10 * time.Second

// Provider entrega o pool compartilhado aos repositórios.
type Provider interface {
	DB(ctx context.Context) (*sql.DB, error)
}

// Lazy abre o pool no primeiro uso e o reaproveita no resto do processo.
// Chamadores concorrentes durante a abertura compartilham a mesma tentativa;
// uma falha não fica em cache, a próxima chamada tenta de novo.
type Lazy struct {
	open  Opener
	group singleflight.Group

	mu sync.RWMutex
	db *sql.DB
}

// NewLazy cria um provider preguiçoso sobre o Opener informado.
func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

// DB retorna o pool, abrindo-o se necessário.
// A abertura compartilhada não herda o cancelamento do chamador: quem desistir
// recebe ctx.Err(), os demais continuam esperando o mesmo resultado.
func (l *Lazy) DB(ctx context.Context) (*sql.DB, error) {
	if db := l.current(); db != nil {
		return db, nil
	}

	ch := l.group.DoChan("db", func() (interface{}, error) {
		if db := l.current(); db != nil {
			return db, nil
		}
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), OpenTimeout)
		defer cancel()
		db, err := l.open(openCtx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.db = db
		l.mu.Unlock()
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	}
}

// Ping verifica se o banco responde (usado pelo /healthz).
func (l *Lazy) Ping(ctx context.Context) error {
	db, err := l.DB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close fecha o pool, se aberto. Chamado no desligamento do processo.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func (l *Lazy) current() *sql.DB {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db
}

// Static embrulha um *sql.DB já aberto (migrações e testes).
type Static struct {
	Conn *sql.DB
}

// DB implementa Provider.
func (s Static) DB(context.Context) (*sql.DB, error) {
	return s.Conn, nil
}
