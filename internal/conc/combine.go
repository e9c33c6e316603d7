package conc

import "tern/internal/rt"

// All waits for every future to reach a terminal state, then returns one
// share per future in argument order. The error policy is first-error-wins
// in argument order, evaluated only after all futures are terminal: losers
// are never abandoned mid-flight, and on error any shares already taken are
// released before returning.
func All(futures ...*Future) ([]*rt.Value, error) {
	for _, f := range futures {
		<-f.done
	}
	results := make([]*rt.Value, len(futures))
	for i, f := range futures {
		v, err := f.takeOutcome()
		if err != nil {
			for j := 0; j < i; j++ {
				rt.Decref(results[j])
				results[j] = nil
			}
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// Race blocks until one future reaches a terminal state and returns its
// index along with its outcome. Losers are not cancelled and keep running
// in the background.
func Race(futures ...*Future) (int, *rt.Value, error) {
	if len(futures) == 0 {
		return -1, nil, ErrCancelled
	}
	winner := make(chan int, len(futures))
	for i, f := range futures {
		go func(i int, f *Future) {
			<-f.done
			winner <- i
		}(i, f)
	}
	i := <-winner
	v, err := futures[i].takeOutcome()
	return i, v, err
}
