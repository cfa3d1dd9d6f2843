// Package mocks provides test doubles for ports interfaces.
//
// The mocks are simple, thread-safe, in-memory implementations suitable for
// unit testing. Each mock provides:
//
//   - Default behavior that mirrors the real store's contract
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Counters for asserting how often a port was used
//   - Reset methods for test isolation
//
// # Usage Example
//
//	func TestEvaluate(t *testing.T) {
//		store := mocks.NewEvaluationStore()
//		store.ReplaceEvaluationsFn = func(context.Context, domain.EvaluationKey, []domain.Evaluation) error {
//			return errWriteFailed
//		}
//
//		evaluator, _ := evaluation.NewModelEvaluator(groups, nil, store, evaluation.Options{SortSeed: 1})
//		// ... assert nothing was stored
//	}
//
// # Available Mocks
//
//   - EvaluationStore: implements ports.EvaluationStore
package mocks
