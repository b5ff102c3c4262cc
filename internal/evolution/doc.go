// Package evolution превращает дерево эволюции в плоские записи.
//
// Дерево (domain.ChainNode) описывает, как развивается одно семейство
// видов: корень — базовая форма, дети — прямые эволюции, ветвление
// допускается на любом уровне. Таблица evolutions хранит каждый полный
// путь от корня до терминального узла как строку из трёх колонок.
//
// # Алгоритм
//
// Обход в глубину. Путь передаётся вниз по значению и копируется при
// расширении, поэтому соседние ветви не делят общий буфер. Записи
// складываются в collector, принадлежащий одному вызову Flatten.
//
// Каждое посещение узла возвращает явный результат:
//   - outcomeTerminal — у узла нет детей, путь готов к упаковке
//   - outcomeDescended — записи уже выпущены глубже
//
//	A → B → {C, D}   =>   (A, B, C), (A, B, D)
//	A → {B, C}       =>   (A, B, NULL), (A, C, NULL)
//	A                =>   нет записей
//
// # Пути длиннее трёх стадий
//
// Поведение задаётся Options.Overflow:
//   - OverflowReject (по умолчанию) — вызов завершается *DepthOverflowError
//   - OverflowTruncate — путь обрезается до трёх стадий, остаток отбрасывается
//
// # Конкурентность
//
// Flatten — чистая функция без общего состояния. Её можно вызывать
// параллельно для разных (или одного и того же неизменяемого) деревьев.
package evolution
