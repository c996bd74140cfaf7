package extra

import(
	"log"
)

// RetryIO calls fn up to ntries times, stopping at the first success.
// ntries is the total attempt count (the configured retry_io value plus
// one). The last error is returned if every attempt fails; transient
// filesystem hiccups on shared storage are the expected customer here.
func RetryIO(fn func() error, ntries int, name string) error {
	if ntries < 1 {
		ntries = 1
	}
	var err error
	for attempt := 1; attempt <= ntries; attempt++ {
		err = fn()
		if err == nil {
			if attempt > 1 {
				log.Printf("File %s: Succeeded on attempt %d", name, attempt)
			}
			return nil
		}
		if attempt < ntries {
			log.Printf("File %s: Caught %v on attempt %d/%d, retrying", name, err, attempt, ntries)
		}
	}
	return err
}
