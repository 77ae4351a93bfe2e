package bom

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
)

// MaxDepth profundidad máxima de recursión de la explosión. Red de seguridad
// independiente de la detección de ciclos: un BOM real no supera ~15 niveles.
const MaxDepth = 50

// Source acceso de solo lectura a las aristas del BOM (grafo padre→hijo).
type Source interface {
	Children(parentCode string) ([]entity.BomEdge, error)
}

// RequirementLine una línea de requerimiento producida por la explosión.
// TotalQuantity es la cantidad acumulada por la ruta: UnitQuantity multiplicada
// por la cantidad total heredada del padre.
type RequirementLine struct {
	Level         int
	ParentCode    string
	ChildCode     string
	UnitQuantity  decimal.Decimal
	TotalQuantity decimal.Decimal
	Unit          string
}

// Motivos por los que se corta una rama sin abortar la explosión.
const (
	WarningCycle = "CYCLE"
	WarningDepth = "DEPTH"
)

// Warning rama cortada durante la traversía (ciclo o profundidad excedida).
type Warning struct {
	Kind string   // CYCLE | DEPTH
	Code string   // producto donde se cortó la rama
	Path []string // ruta desde la raíz hasta el corte
}

// Result resultado de una explosión: líneas planas (sin consolidar) más las
// advertencias de ramas cortadas.
type Result struct {
	Lines    []RequirementLine
	Warnings []Warning
}

// Explode expande recursivamente el BOM de rootCode en líneas de requerimiento
// planas, escalando cada cantidad por la ruta completa hasta la raíz.
//
// Función pura sobre el grafo que Source entrega: sin efectos secundarios.
// Un producto puede aparecer bajo varias ramas independientes; solo se rechaza
// la revisita dentro de la misma ruta (el set visited es por rama, copiado en
// cada descenso, nunca compartido entre hermanos). Un ciclo corta esa rama y
// queda reportado en Warnings; nunca aborta el resto de la explosión.
//
// Si la raíz no tiene BOM, la raíz misma es la única línea de requerimiento
// (sin BOM ⇒ adquisición directa del producto terminado).
func Explode(rootCode string, rootQty decimal.Decimal, src Source) (*Result, error) {
	if rootCode == "" || !rootQty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	res := &Result{}
	visited := map[string]struct{}{rootCode: {}}
	if err := explode(src, rootCode, rootQty, 1, visited, []string{rootCode}, res); err != nil {
		return nil, err
	}

	if len(res.Lines) == 0 {
		res.Lines = append(res.Lines, RequirementLine{
			Level:         0,
			ChildCode:     rootCode,
			UnitQuantity:  decimal.NewFromInt(1),
			TotalQuantity: rootQty,
		})
	}
	return res, nil
}

func explode(src Source, parentCode string, parentQty decimal.Decimal, level int, visited map[string]struct{}, path []string, res *Result) error {
	if level > MaxDepth {
		res.Warnings = append(res.Warnings, Warning{Kind: WarningDepth, Code: parentCode, Path: clonePath(path)})
		return nil
	}

	edges, err := src.Children(parentCode)
	if err != nil {
		return fmt.Errorf("bom children de %s: %w", parentCode, err)
	}

	for _, edge := range edges {
		if _, seen := visited[edge.ChildCode]; seen {
			// Revisita dentro de la misma ruta: ciclo (incluye auto-aristas).
			res.Warnings = append(res.Warnings, Warning{Kind: WarningCycle, Code: edge.ChildCode, Path: clonePath(path)})
			continue
		}

		total := edge.QuantityPerParent.Mul(parentQty)
		res.Lines = append(res.Lines, RequirementLine{
			Level:         level,
			ParentCode:    parentCode,
			ChildCode:     edge.ChildCode,
			UnitQuantity:  edge.QuantityPerParent,
			TotalQuantity: total,
			Unit:          edge.Unit,
		})

		// Copias por rama: los hermanos no deben ver la ruta del otro.
		childVisited := make(map[string]struct{}, len(visited)+1)
		for k := range visited {
			childVisited[k] = struct{}{}
		}
		childVisited[edge.ChildCode] = struct{}{}
		childPath := append(clonePath(path), edge.ChildCode)

		if err := explode(src, edge.ChildCode, total, level+1, childVisited, childPath, res); err != nil {
			return err
		}
	}
	return nil
}

// Consolidate agrupa las líneas por ChildCode sumando TotalQuantity. Si el mismo
// hijo aparece a distintos niveles, se conserva el nivel más cercano a la raíz
// para reporte (las ocurrencias profundas no generan líneas de compra aparte).
// El orden de salida es determinista: nivel ascendente y luego código.
func Consolidate(lines []RequirementLine) []RequirementLine {
	byChild := make(map[string]*RequirementLine, len(lines))
	for _, ln := range lines {
		cur, ok := byChild[ln.ChildCode]
		if !ok {
			cp := ln
			byChild[ln.ChildCode] = &cp
			continue
		}
		cur.TotalQuantity = cur.TotalQuantity.Add(ln.TotalQuantity)
		if ln.Level < cur.Level {
			cur.Level = ln.Level
			cur.ParentCode = ln.ParentCode
			cur.UnitQuantity = ln.UnitQuantity
			cur.Unit = ln.Unit
		}
	}

	out := make([]RequirementLine, 0, len(byChild))
	for _, v := range byChild {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].ChildCode < out[j].ChildCode
	})
	return out
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}
