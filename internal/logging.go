package internal

import (
	"fmt"
	"log"
	"os"
)

func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// Percent formats part/total as a whole-number percentage, e.g. "50%".
// A zero total yields "0%".
func Percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)/float64(total)*100)
}
