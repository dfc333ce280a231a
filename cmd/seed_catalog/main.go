// seed_catalog genera un script SQL para poblar ítems y ubicaciones de PostgreSQL a partir de
// un CSV exportado del WMS.
//
// Uso: go run ./cmd/seed_catalog [-latin1] [-company ID] [ruta/catalogo.csv]
// Por defecto lee catalogo.csv del directorio actual.
// Columnas: tipo,código,nombre. tipo ITEM (código = SKU) o LOCATION (código = etiqueta
// "pasillo-módulo-altura", nombre = STANDARD | BULK | PICKING).
// Escribe: internal/infrastructure/postgres/seed_catalog.sql
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type itemRow struct{ sku, name string }

type locationRow struct{ label, aisle, bay, height, typ string }

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	company := flag.String("company", "default", "company_id de los ítems")
	flag.Parse()

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	items, locations, err := parseCatalog(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	// Ruta del script de salida (relativa al módulo)
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	writeSQL(out, *company, items, locations)
	fmt.Printf("Generado %s: %d ítems, %d ubicaciones\n", outPath, len(items), len(locations))
}

// parseCatalog lee las filas; la cabecera es opcional y las líneas vacías se ignoran.
// SKU y etiquetas repetidos se quedan con la primera aparición.
func parseCatalog(r io.Reader) ([]itemRow, []locationRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		items     []itemRow
		locations []locationRow
		seen      = make(map[string]bool)
	)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(rec[0]))
		if line == 1 && kind == "TIPO" {
			continue
		}
		if len(rec) < 2 {
			return nil, nil, fmt.Errorf("línea %d: faltan columnas", line)
		}
		code := strings.TrimSpace(rec[1])
		name := ""
		if len(rec) > 2 {
			name = strings.TrimSpace(rec[2])
		}

		switch kind {
		case "ITEM":
			sku := strings.ToUpper(code)
			if sku == "" || name == "" {
				return nil, nil, fmt.Errorf("línea %d: ítem sin SKU o nombre", line)
			}
			if seen["i:"+sku] {
				continue
			}
			seen["i:"+sku] = true
			items = append(items, itemRow{sku: sku, name: name})
		case "LOCATION":
			aisle, bay, height, ok := entity.ParseLocationLabel(code)
			if !ok {
				return nil, nil, fmt.Errorf("línea %d: etiqueta inválida %q", line, code)
			}
			typ := strings.ToUpper(name)
			if typ == "" {
				typ = entity.LocationTypeStandard
			}
			if !entity.IsValidLocationType(typ) {
				return nil, nil, fmt.Errorf("línea %d: tipo de ubicación %q", line, name)
			}
			label := entity.FormatLocationLabel(aisle, bay, height)
			if seen["l:"+label] {
				continue
			}
			seen["l:"+label] = true
			locations = append(locations, locationRow{label: label, aisle: aisle, bay: bay, height: height, typ: typ})
		default:
			return nil, nil, fmt.Errorf("línea %d: tipo %q desconocido", line, rec[0])
		}
	}
	return items, locations, nil
}

func writeSQL(w io.Writer, companyID string, items []itemRow, locations []locationRow) {
	fmt.Fprintln(w, "-- Catálogo inicial (ítems y ubicaciones)")
	fmt.Fprintln(w, "-- Generado por cmd/seed_catalog")
	fmt.Fprintln(w)

	if len(items) > 0 {
		fmt.Fprintln(w, "-- 1. Ítems")
		fmt.Fprintln(w, "INSERT INTO items (id, company_id, sku, name, barcode, created_at, updated_at) VALUES")
		for i, it := range items {
			fmt.Fprintf(w, "  ('%s', '%s', '%s', '%s', '', now(), now())%s\n",
				uuid.New().String(), escapeSQL(companyID), escapeSQL(it.sku), escapeSQL(it.name), sep(i, len(items)))
		}
		fmt.Fprintln(w, "ON CONFLICT (sku) DO NOTHING;")
		fmt.Fprintln(w)
	}

	if len(locations) > 0 {
		fmt.Fprintln(w, "-- 2. Ubicaciones")
		fmt.Fprintln(w, "INSERT INTO locations (id, label, aisle, bay, height, type, created_at) VALUES")
		for i, l := range locations {
			fmt.Fprintf(w, "  ('%s', '%s', '%s', '%s', '%s', '%s', now())%s\n",
				uuid.New().String(), escapeSQL(l.label), escapeSQL(l.aisle), escapeSQL(l.bay), escapeSQL(l.height), l.typ, sep(i, len(locations)))
		}
		fmt.Fprintln(w, "ON CONFLICT (label) DO NOTHING;")
	}
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
