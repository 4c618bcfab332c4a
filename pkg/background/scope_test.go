package background

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScope_CancelWaitsMembers(test *testing.T) {
	req := require.New(test)
	scope, cancel := NewScope()
	var finished int32
	for i := 0; i < 3; i++ {
		scope.Go(func(ctx context.Context) {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&finished, 1)
		})
	}
	req.False(scope.Expired())
	cancel()
	req.True(scope.Expired())
	req.Equal(int32(3), atomic.LoadInt32(&finished))
}

func TestScope_AddDone(test *testing.T) {
	scope, cancel := NewScope()
	released := make(chan struct{})
	scope.Add(1)
	go func() {
		defer scope.Done()
		<-scope.Context().Done()
		close(released)
	}()
	cancel()
	select {
	case <-released:
	default:
		require.FailNow(test, "cancel returned before member is done")
	}
}

func TestWithParent(test *testing.T) {
	req := require.New(test)
	parent, cancelParent := context.WithCancel(context.Background())
	scope, cancel := WithParent(parent)
	defer cancel()

	req.False(scope.Expired())
	cancelParent()
	req.Eventually(scope.Expired, time.Second, time.Millisecond)
	req.ErrorIs(scope.Context().Err(), context.Canceled)
}

func ExampleScope() {
	data := make(chan int)

	producers, stopProducers := NewScope()
	for i := 1; i <= 2; i++ {
		i := i
		producers.Go(func(ctx context.Context) {
			for {
				select {
				case data <- i:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	consumers, stopConsumers := NewScope()
	consumers.Go(func(ctx context.Context) {
		for {
			select {
			case <-data:
			case <-ctx.Done():
				fmt.Println("consumer done")
				return
			}
		}
	})

	time.Sleep(10 * time.Millisecond)
	stopProducers()
	fmt.Println("producers done")
	stopConsumers()

	// Output:
	// producers done
	// consumer done
}
