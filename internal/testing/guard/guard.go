package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("VENDORA_TEST_MODE") == "" {
			_ = os.Setenv("VENDORA_TEST_MODE", "1")
		}
	})
}
