package data

func InitData() {
	initUser()
	initJobs()
}
