// Package csvfile 以追加方式把成员记录写入带BOM的UTF-8 CSV文件,是一次运行的权威输出
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var Header = []string{
	"Pag", "NP", "Nro", "Miembro", "Nivel", "Gmail", "Activo", "Unido",
	"Valor", "Contribuye", "Renueva", "EmailSkool", "Frase",
	"Localiza", "Invito", "Invitado",
	"PermanenciaDias", "PermanenciaMeses",
}

var ProvenanceHeader = []string{"ScriptEjecutado", "ArchivoGenerado"}

// Provenance 可选的来源列:执行的程序名和生成的文件路径
type Provenance struct {
	Script   string
	Artifact string
}

type Writer struct {
	path       string
	provenance *Provenance
	created    bool
}

// NewWriter 创建写入器;provenance 为nil时不输出来源列。文件在第一次 Append 时创建
func NewWriter(path string, provenance *Provenance) *Writer {
	return &Writer{path: path, provenance: provenance}
}

func (w *Writer) Path() string {
	return w.path
}

// Append 第一次调用时创建文件并写入BOM和表头,之后追加
func (w *Writer) Append(records []model.MemberRecord) error {
	flag := os.O_WRONLY | os.O_APPEND
	if !w.created {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(w.path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}

	if !w.created {
		if _, err := f.Write(bom); err != nil {
			f.Close()
			return fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(f)
	if !w.created {
		header := Header
		if w.provenance != nil {
			header = append(append([]string{}, Header...), ProvenanceHeader...)
		}
		if err := cw.Write(header); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec, w.provenance)); err != nil {
			f.Close()
			return fmt.Errorf("write row %d: %w", rec.Sequence, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	w.created = true
	return nil
}

// Row 按表头顺序输出一行;未知的在籍天数/月数输出为空单元格
func Row(rec model.MemberRecord, provenance *Provenance) []string {
	row := []string{
		strconv.Itoa(rec.Page),
		strconv.Itoa(rec.Position),
		strconv.Itoa(rec.Sequence),
		rec.Name,
		rec.Tier,
		rec.Email,
		rec.Activity,
		rec.Joined,
		rec.Value,
		rec.Contribution,
		rec.Renewal,
		rec.Handle,
		rec.Bio,
		rec.Location,
		rec.InvitedBy,
		rec.Invited,
		optionalInt(rec.TenureDays),
		optionalInt(rec.TenureMonths),
	}
	if provenance != nil {
		row = append(row, provenance.Script, provenance.Artifact)
	}
	return row
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// UniqueName 返回 <base>_<DD_MM_YYYY>.csv,已存在时追加 _1、_2 ...
func UniqueName(dir, base string, now time.Time) (string, error) {
	stem := fmt.Sprintf("%s_%s", base, now.Format("02_01_2006"))
	name := filepath.Join(dir, stem+".csv")
	for n := 1; ; n++ {
		_, err := os.Stat(name)
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Abs(name)
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		name = filepath.Join(dir, fmt.Sprintf("%s_%d.csv", stem, n))
	}
}

// Exists 文件是否存在
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
