// Package cdb reads and writes card databases, the SQLite files game
// clients load cards from.
package cdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"cdb-transformer/internal/card"
	"cdb-transformer/internal/row"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Memory is the DSN of a private in-memory database.
const Memory = ":memory:"

var (
	selectCards = buildSelect()
	insertDatas = "INSERT OR REPLACE INTO datas(id,ot,alias,setcode,type,atk,def,level,race,attribute,category) VALUES(" +
		placeholders(11) + ")"
	insertTexts = `INSERT OR REPLACE INTO texts(id,name,"desc",` + strColumns("") + ") VALUES(" +
		placeholders(3+row.TextSlots) + ")"
)

func strColumns(wrap string) string {
	cols := make([]string, row.TextSlots)
	for i := range cols {
		cols[i] = fmt.Sprintf("str%d", i+1)
		if wrap != "" {
			cols[i] = fmt.Sprintf(wrap, cols[i])
		}
	}
	return strings.Join(cols, ",")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// buildSelect joins both tables in row.Dest order. NULL columns read as zero.
func buildSelect() string {
	return "SELECT datas.id,ifnull(ot,0),ifnull(alias,0),ifnull(setcode,0),ifnull(type,0)," +
		"ifnull(atk,0),ifnull(def,0),ifnull(level,0),ifnull(race,0),ifnull(attribute,0),ifnull(category,0)," +
		`ifnull(name,''),ifnull("desc",''),` + strColumns("ifnull(%s,'')") +
		" FROM datas JOIN texts ON datas.id = texts.id ORDER BY datas.id"
}

// DB is an open card database.
type DB struct {
	db *sql.DB
}

// Open connects to dsn, a file path or Memory. SQLite allows one writer,
// so the pool keeps a single connection; this also keeps Memory databases
// from splitting across connections.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open cdb %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cdb %s: %w", dsn, err)
	}
	return &DB{db: db}, nil
}

// Close releases the connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// EnsureSchema creates the datas and texts tables if missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, row.Schema); err != nil {
		return fmt.Errorf("create card tables: %w", err)
	}
	return nil
}

// Exec runs a script of one or more SQL statements.
func (d *DB) Exec(ctx context.Context, script string) error {
	if _, err := d.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("execute sql: %w", err)
	}
	return nil
}

// Cards reads every card present in both tables, ordered by code.
func (d *DB) Cards(ctx context.Context) ([]card.Card, error) {
	rows, err := d.db.QueryContext(ctx, selectCards)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []card.Card
	for rows.Next() {
		var r row.Row
		if err := rows.Scan(r.Dest()...); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, r.Card())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// Put upserts cards in a single transaction.
func (d *DB) Put(ctx context.Context, cards []card.Card) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	datas, err := tx.PrepareContext(ctx, insertDatas)
	if err != nil {
		return fmt.Errorf("prepare datas insert: %w", err)
	}
	defer datas.Close()

	texts, err := tx.PrepareContext(ctx, insertTexts)
	if err != nil {
		return fmt.Errorf("prepare texts insert: %w", err)
	}
	defer texts.Close()

	for _, c := range cards {
		r := row.FromCard(c)
		if _, err := datas.ExecContext(ctx, r.DatasArgs()...); err != nil {
			return fmt.Errorf("insert datas %d: %w", c.Code, err)
		}
		if _, err := texts.ExecContext(ctx, r.TextsArgs()...); err != nil {
			return fmt.Errorf("insert texts %d: %w", c.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Read loads every card from the database file at path. A missing file is
// an error rather than a new empty database.
func Read(ctx context.Context, path string) ([]card.Card, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat cdb: %w", err)
	}

	d, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	cards, err := d.Cards(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("cards", len(cards)).Msg("Read card database")
	return cards, nil
}

// Write upserts cards into the database file at path, creating the file
// and tables when needed.
func Write(ctx context.Context, path string, cards []card.Card) error {
	d, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := d.Put(ctx, cards); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("cards", len(cards)).Msg("Wrote card database")
	return nil
}
