package common

import "fmt"

func RedisKeyActivity(communityID string) string {
	return fmt.Sprintf("activity:%s", communityID)
}

func RedisKeyCommunitySettings(communityID string) string {
	return fmt.Sprintf("communitysettings:%s", communityID)
}
