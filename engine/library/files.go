package library

import "os"

// Touch creates the file if it does not exist yet.
func Touch(path string) {
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		LogCLI(err.Error(), 2)
		return
	}
	if err = file.Close(); err != nil {
		LogCLI(err.Error(), 2)
	}
}
