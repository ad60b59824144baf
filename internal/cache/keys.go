package cache

import "fmt"

func JobStatusKey(jobID int64) string {
	return fmt.Sprintf("job:%d", jobID)
}

func RefreshTokenKey(token string) string {
	return fmt.Sprintf("refresh:%s", token)
}

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:%d", userID)
}
