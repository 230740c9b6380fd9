package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineValues представляет значения статей отчета по именам.
// Отсутствующая статья трактуется как ноль: отчеты заполняются
// инкрементально, и частично введенный отчет должен считаться без ошибок.
type LineValues map[string]decimal.Decimal

// Get возвращает значение статьи или ноль, если статья не задана
func (v LineValues) Get(name string) decimal.Decimal {
	if value, ok := v[name]; ok {
		return value
	}
	return decimal.Zero
}

// SumOf возвращает сумму перечисленных статей
func (v LineValues) SumOf(names ...string) decimal.Decimal {
	total := decimal.Zero
	for _, name := range names {
		total = total.Add(v.Get(name))
	}
	return total
}

// SpreadNode представляет один расчетный узел графа: имя результирующей
// статьи, статьи-аргументы и формулу
type SpreadNode struct {
	Name    string
	Inputs  []string
	Compute func(v LineValues) decimal.Decimal
}

// SpreadGraph представляет граф расчетных статей, отсортированный
// в порядке зависимостей. Один и тот же граф используется для всех
// отчетов данного типа и строится один раз при старте.
type SpreadGraph struct {
	order []SpreadNode
	raw   map[string]bool
}

// NewSpreadGraph строит граф из набора узлов и выполняет топологическую
// сортировку. Статьи-аргументы, не определенные ни одним узлом, считаются
// сырыми полями. Цикл зависимостей является ошибкой конфигурации.
func NewSpreadGraph(nodes []SpreadNode) (*SpreadGraph, error) {
	derived := make(map[string]SpreadNode, len(nodes))
	for _, node := range nodes {
		if _, ok := derived[node.Name]; ok {
			return nil, fmt.Errorf("статья %q определена более одного раза", node.Name)
		}
		derived[node.Name] = node
	}

	// Считаем входящие зависимости только между расчетными узлами
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		inDegree[node.Name] = 0
	}
	for _, node := range nodes {
		for _, input := range node.Inputs {
			if _, ok := derived[input]; ok {
				inDegree[node.Name]++
				dependents[input] = append(dependents[input], node.Name)
			}
		}
	}

	// Сортировка Кана: сначала узлы без зависимостей от других узлов
	queue := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if inDegree[node.Name] == 0 {
			queue = append(queue, node.Name)
		}
	}

	order := make([]SpreadNode, 0, len(nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, derived[name])
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, fmt.Errorf("обнаружен цикл зависимостей между расчетными статьями")
	}

	// Сырые статьи: аргументы, не определенные ни одним узлом
	raw := make(map[string]bool)
	for _, node := range nodes {
		for _, input := range node.Inputs {
			if _, ok := derived[input]; !ok {
				raw[input] = true
			}
		}
	}

	return &SpreadGraph{order: order, raw: raw}, nil
}

// IsRawInput сообщает, является ли статья сырым полем графа
func (g *SpreadGraph) IsRawInput(name string) bool {
	return g.raw[name]
}

// mustSpreadGraph строит граф и паникует при ошибке конфигурации.
// Используется для графов, определяемых на уровне пакета.
func mustSpreadGraph(nodes []SpreadNode) *SpreadGraph {
	graph, err := NewSpreadGraph(nodes)
	if err != nil {
		panic(err)
	}
	return graph
}

// Evaluate вычисляет все расчетные статьи снизу вверх.
// Входная карта не изменяется; результат содержит и сырые,
// и расчетные значения. Повторное вычисление идемпотентно.
func (g *SpreadGraph) Evaluate(values LineValues) LineValues {
	result := make(LineValues, len(values)+len(g.order))
	for name, value := range values {
		result[name] = value
	}
	for _, node := range g.order {
		result[node.Name] = node.Compute(result)
	}
	return result
}

// sumNode создает узел, равный сумме перечисленных статей.
// Формулы промежуточных итогов определяются один раз и
// переиспользуются обоими типами отчетов.
func sumNode(name string, inputs ...string) SpreadNode {
	return SpreadNode{
		Name:   name,
		Inputs: inputs,
		Compute: func(v LineValues) decimal.Decimal {
			return v.SumOf(inputs...)
		},
	}
}
