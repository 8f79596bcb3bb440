package main

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/asdine/storm/v3"
	"github.com/mdouchement/bluewiki/internal/config"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/pkg/stormsql"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

// bluewiki console -c bluewiki.yml "SELECT count(*) FROM articles WHERE AuthorID = 1 AND CreatedAt > '2024-02-16 20:52:55';"

var tables = map[string]reflect.Type{
	"users":              reflect.TypeOf(model.User{}),
	"sessions":           reflect.TypeOf(model.Session{}),
	"articles":           reflect.TypeOf(model.Article{}),
	"comments":           reflect.TypeOf(model.Comment{}),
	"tags":               reflect.TypeOf(model.Tag{}),
	"article_tags":       reflect.TypeOf(model.ArticleTag{}),
	"files":              reflect.TypeOf(model.File{}),
	"creators":           reflect.TypeOf(model.Creator{}),
	"settings":           reflect.TypeOf(model.Setting{}),
	"verification_codes": reflect.TypeOf(model.VerificationCode{}),
}

var consoleCmd = &coral.Command{
	Use:   "console SQL",
	Short: "SQL console for the storm database",
	Args:  coral.ExactArgs(1),
	RunE: func(_ *coral.Command, args []string) error {
		//
		//
		sc, err := stormsql.ParseSelect(args[0])
		if err != nil {
			return err
		}

		table, ok := tables[sc.Tablename]
		if !ok {
			return errors.Errorf("unknown tablename: %s", sc.Tablename)
		}

		konf, err := config.Load(cfg)
		if err != nil {
			return err
		}
		if !isStorm(konf) {
			return errors.New("the console only supports the storm driver")
		}

		//
		//
		fmt.Println("Opening", konf.String("database.path"))
		db, err := storm.Open(konf.String("database.path"), database.StormCodec)
		if err != nil {
			return errors.Wrap(err, "could not open database")
		}
		defer db.Close()

		// Execute

		query := sc.Query(db)
		if sc.Count {
			return count(table, query)
		}

		return list(sc, table, query)
	},
}

func count(table reflect.Type, query storm.Query) error {
	n, err := query.Count(reflect.New(table).Interface())
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)

	return nil
}

func list(sc *stormsql.SelectClause, table reflect.Type, query storm.Query) error {
	records := reflect.New(reflect.SliceOf(reflect.PtrTo(table)))

	err := query.Find(records.Interface())
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}

	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	if len(sc.SelectedFields) == 0 {
		return jsondump(records.Interface())
	}

	// Projection of the selected fields
	rows := records.Elem()
	projection := make([]map[string]interface{}, rows.Len())
	for i := range projection {
		row := rows.Index(i).Elem()
		projection[i] = map[string]interface{}{}

		for _, name := range sc.SelectedFields {
			field := row.FieldByName(name)
			if !field.IsValid() {
				return errors.Errorf("unknown field %s in %s", name, sc.Tablename)
			}
			projection[i][name] = field.Interface()
		}
	}

	return jsondump(projection)
}

func jsondump(v interface{}) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(d))
	return nil
}
