package brain

import (
	"strings"

	"github.com/fa-friend/fa/pkg/model"
)

var welcomeMessages = map[model.Persona]string{
	model.PersonaFriendly:     "เย้! ยินดีที่ได้รู้จัก {name}! เราชื่อฟ้า เป็นเพื่อนกันตั้งแต่วันนี้เลยนะ 😊",
	model.PersonaCaring:       "สวัสดีค่ะ {name} ฟ้ายินดีที่ได้รู้จักนะคะ จะคอยดูแลเป็นเพื่อนให้ค่ะ 💕",
	model.PersonaCheerful:     "ว้าว! {name}! ยินดีที่ได้เจอกัน! ฟ้าตื่นเต้นมากเลย เราจะสนุกด้วยกันแน่ ๆ! 🎉",
	model.PersonaProfessional: "สวัสดีครับ {name} ผมชื่อฟ้า ยินดีที่ได้รู้จักครับ จะช่วยจัดการตารางและเตือนกิจวัตรให้ครับ 📋",
}

// WelcomeMessage greets a newly registered user in the persona's voice
func WelcomeMessage(p model.Persona, name string) string {
	return strings.ReplaceAll(welcomeMessages[p.OrDefault()], "{name}", name)
}

// GatewayFailureReply is shown when the model call fails or times out
func GatewayFailureReply(name string) string {
	return "อุ๊ปส์ ฟ้าตอบไม่ได้ชั่วคราว ลองใหม่นะ " + name + "~ 😅"
}

// FailureReply is shown when anything else in a chat turn goes wrong
func FailureReply(name string) string {
	return "ขอโทษนะ " + name + " ฟ้ามีปัญหาชั่วคราว ลองใหม่อีกทีนะ~ 😅"
}
