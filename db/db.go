// Database Management
//
// Copyright (c) 2021, 2022, 2023  Philip Kaludercic
//
// This file is part of go-snakes.
//
// go-snakes is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-snakes is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-snakes. If not, see
// <http://www.gnu.org/licenses/>

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"go-snakes"
	"go-snakes/cmd"
	"go-snakes/game"
)

//go:embed *.sql
var sql_dir embed.FS

type db struct {
	// The database connections
	read  *sql.DB
	write *sql.DB

	// The SQL queries are embedded from the .sql files in this
	// directory, and they are loaded by the database manager.
	// QUERIES are the commands handled by READ, and COMMANDS are
	// the queries handled by WRITE.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt

	done chan struct{}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (db *db) saveAgent(ctx context.Context, tx *sql.Tx, name, version string) error {
	if name == "" {
		return nil
	}
	_, err := tx.Stmt(db.commands["insert-agent"]).ExecContext(ctx,
		name, nullable(version))
	return err
}

func (db *db) SaveOutcome(ctx context.Context, o *game.Outcome) {
	tx, err := db.write.BeginTx(ctx, nil)
	if err != nil {
		log.Print(err)
		return
	}

	var (
		res sql.Result
		id  int64
	)
	for _, name := range o.Names {
		if err = db.saveAgent(ctx, tx, name, ""); err != nil {
			goto fail
		}
	}

	res, err = tx.Stmt(db.commands["insert-match"]).ExecContext(ctx,
		o.Names[0], nullable(o.Names[1]),
		o.Scores[0], o.Scores[1],
		nullable(o.Messages[0]), nullable(o.Messages[1]))
	if err != nil {
		goto fail
	}
	id, err = res.LastInsertId()
	if err != nil {
		goto fail
	}
	snakes.Debug.Printf("Saving match %d (%s)", id, o)

	for _, path := range o.Replays {
		_, err = tx.Stmt(db.commands["insert-replay"]).ExecContext(ctx, id, path)
		if err != nil {
			goto fail
		}
	}

	err = tx.Commit()
	if err != nil {
		log.Print(err)
	}
	return

fail:
	log.Print(err)
	err = tx.Rollback()
	if err != nil {
		log.Print(err)
	}
}

func (db *db) SaveGeneration(ctx context.Context, name, version string, gen int, fitness float64) {
	tx, err := db.write.BeginTx(ctx, nil)
	if err != nil {
		log.Print(err)
		return
	}

	if err = db.saveAgent(ctx, tx, name, version); err != nil {
		goto fail
	}
	_, err = tx.Stmt(db.commands["insert-generation"]).ExecContext(ctx,
		name, version, gen, fitness)
	if err != nil {
		goto fail
	}

	err = tx.Commit()
	if err != nil {
		log.Print(err)
	}
	return

fail:
	log.Print(err)
	err = tx.Rollback()
	if err != nil {
		log.Print(err)
	}
}

func (db *db) SaveRating(ctx context.Context, name string, rating float64) {
	_, err := db.commands["update-rating"].ExecContext(ctx, name, rating)
	if err != nil {
		log.Print(err)
	}
}

func (db *db) Forget(ctx context.Context, name string) error {
	res, err := db.commands["delete-agent"].ExecContext(ctx, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Errorf("no agent named %q", name)
	}
	return nil
}

func scanContestant(scan func(dest ...interface{}) error) (*snakes.Contestant, error) {
	var c snakes.Contestant
	return &c, scan(&c.Id, &c.Name, &c.Version, &c.Rating, &c.Matches)
}

func (db *db) QueryContestant(ctx context.Context, name string) *snakes.Contestant {
	row := db.queries["select-agent"].QueryRowContext(ctx, name)
	c, err := scanContestant(row.Scan)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Print(err)
		}
		return nil
	}
	return c
}

func (db *db) QueryContestants(ctx context.Context, c chan<- *snakes.Contestant, page int) {
	defer close(c)
	rows, err := db.queries["select-agents"].QueryContext(ctx, page)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		con, err := scanContestant(rows.Scan)
		if err != nil {
			log.Print(err)
			return
		}
		c <- con
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func scanMatch(scan func(dest ...interface{}) error) (*snakes.Match, error) {
	var m snakes.Match
	return &m, scan(
		&m.Id,
		&m.Names[0], &m.Names[1],
		&m.Scores[0], &m.Scores[1],
		&m.Messages[0], &m.Messages[1],
		&m.Played)
}

func (db *db) queryReplays(ctx context.Context, m *snakes.Match) error {
	rows, err := db.queries["select-replays"].QueryContext(ctx, m.Id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		m.Replays = append(m.Replays, path)
	}
	return rows.Err()
}

func (db *db) QueryMatch(ctx context.Context, id int64) *snakes.Match {
	row := db.queries["select-match"].QueryRowContext(ctx, id)
	m, err := scanMatch(row.Scan)
	if err == nil {
		err = db.queryReplays(ctx, m)
	}
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Print(err)
		}
		return nil
	}
	return m
}

func (db *db) QueryMatches(ctx context.Context, name string, c chan<- *snakes.Match, page int) {
	defer close(c)

	var (
		rows *sql.Rows
		err  error
	)
	if name == "" {
		rows, err = db.queries["select-matches"].QueryContext(ctx, page)
	} else {
		rows, err = db.queries["select-matches-by"].QueryContext(ctx,
			name, page)
	}
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	// Replays are looked up after the page has been read, to avoid
	// interleaving queries on the same connection.
	var matches []*snakes.Match
	for rows.Next() {
		m, err := scanMatch(rows.Scan)
		if err != nil {
			log.Print(err)
			return
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
		return
	}
	rows.Close()

	for _, m := range matches {
		if err := db.queryReplays(ctx, m); err != nil {
			log.Print(err)
			return
		}
		c <- m
	}
}

func (db *db) QueryGenerations(ctx context.Context, name string, c chan<- *snakes.Generation) {
	defer close(c)
	rows, err := db.queries["select-generations"].QueryContext(ctx, name)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var g snakes.Generation
		err = rows.Scan(&g.Number, &g.Fitness, &g.Trained)
		if err != nil {
			log.Print(err)
			return
		}
		c <- &g
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func (db *db) DrawGraph(ctx context.Context, w io.Writer) error {
	res, err := db.queries["select-graph"].QueryContext(ctx)
	if err != nil {
		return err
	}
	defer res.Close()

	seen := make(map[int]struct{})
	node := func(id int, name string) (string, error) {
		node := fmt.Sprintf("n%d", id)
		if _, ok := seen[id]; ok {
			return node, nil
		}
		seen[id] = struct{}{}
		label := strings.ReplaceAll(name, `"`, `\"`)
		_, err = fmt.Fprintf(w, `%s [label="%s" href="/agent/%s"];`,
			node, label, name)
		if err != nil {
			return "", err
		}
		return node, nil
	}

	_, err = fmt.Fprintf(w, `strict digraph dominance { ratio = compress ;`)
	if err != nil {
		return err
	}

	for res.Next() {
		var (
			wname, lname string
			wid, lid     int
		)

		err = res.Scan(&wname, &wid, &lname, &lid)
		if err != nil {
			return err
		}

		t, err := node(lid, lname)
		if err != nil {
			return err
		}
		f, err := node(wid, wname)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(w, f, "->", t, ";")
		if err != nil {
			return err
		}
	}
	if err = res.Err(); err != nil {
		return err
	}

	_, err = fmt.Fprint(w, `}`)
	return err
}

func (db *db) Start(st *cmd.State, conf *cmd.Conf) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	defer signal.Stop(c)
	tick := time.NewTicker(24 * time.Hour)
	defer tick.Stop()
	for {
		var err error
		select {
		case <-db.done:
			return
		case <-c:
			// https://www.sqlite.org/lang_vacuum.html
			_, err = db.write.Exec("VACUUM;")
		case <-tick.C:
			var res sql.Result
			res, err = db.commands["delete-stale"].Exec()
			if err != nil {
				break
			}

			var n int64
			n, err = res.RowsAffected()
			if err != nil {
				break
			}
			snakes.Debug.Println("Deleted", n, "stale generations")
			// https://www.sqlite.org/pragma.html#pragma_optimize
			_, err = db.write.Exec("PRAGMA optimize;")
		}
		if err != nil {
			log.Print(err)
		}
	}
}

func (db *db) Shutdown() {
	var err error

	close(db.done)

	// https://www.sqlite.org/pragma.html#pragma_optimize
	_, err = db.write.Exec("PRAGMA optimize;")
	if err != nil {
		log.Print(err)
	}

	err = db.write.Close()
	if err != nil {
		log.Print(err)
	}

	err = db.read.Close()
	if err != nil {
		log.Print(err)
	}
}

func (*db) String() string { return "Database Manager" }

// Open prepares the database in FILE
func Open(file string) (cmd.Database, error) {
	read, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		write:    write,
		read:     read,
		done:     make(chan struct{}),
	}

	for _, pragma := range []string{
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		"journal_mode = WAL",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"synchronous = normal",
		// https://www.sqlite.org/pragma.html#pragma_temp_store
		"temp_store = memory",
		// https://www.sqlite.org/pragma.html#pragma_mmap_size
		"mmap_size = 268435456",
		// https://www.sqlite.org/pragma.html#pragma_foreign_keys
		"foreign_keys = on",
	} {
		snakes.Debug.Printf("Run PRAGMA %v", pragma)
		_, err = db.write.Exec("PRAGMA " + pragma + ";")
		if err != nil {
			return nil, err
		}
	}

	entries, err := sql_dir.ReadDir(".")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sql_dir, entry.Name())
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(base, "create-") || strings.HasPrefix(base, "run-") {
			_, err = db.write.Exec(string(data))
			snakes.Debug.Printf("Executed query %v", base)
		} else {
			query := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(query, "select-") {
				db.queries[query], err = db.read.Prepare(string(data))
				snakes.Debug.Printf("Registered query %v", query)
			} else {
				db.commands[query], err = db.write.Prepare(string(data))
				snakes.Debug.Printf("Registered command %v", query)
			}
		}
		if err != nil {
			return nil, errors.Wrap(err, entry.Name())
		}
	}

	if len(db.queries) == 0 {
		panic("No queries loaded")
	}

	return db, nil
}

// Initialise the database and database managers
func Register(st *cmd.State, conf *cmd.Conf) {
	db, err := Open(conf.Database.File)
	if err != nil {
		log.Fatal(err, ": ", conf.Database.File)
	}
	st.Register(db)
}
