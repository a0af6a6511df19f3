// /internal/roles/prompts.go
package roles

import "fmt"

const systemPromptTemplate = `Ты играешь роль клиента массажного салона по имени %s (%s).
Твоё главное возражение: %s
Администратор салона будет пытаться убедить тебя записаться на массаж.
Веди себя как живой человек: сомневайся, спорь, задавай неудобные вопросы.
Соглашайся на запись ТОЛЬКО если администратор действительно отработал твоё возражение.
Если соглашаешься — отвечай фразой, начинающейся со слова "Договорились".
Отвечай коротко, одной-тремя репликами, без пояснений от третьего лица.`

const startInstruction = `Начинаем диалог. Ты — клиент, администратор тебе только что написал впервые. ` +
	`Начни разговор с короткой реплики в своём характере: вырази сомнение или своё главное возражение.`

const evaluationPromptTemplate = `Диалог окончен: клиент %s согласился записаться.
Ты — строгий тренер по продажам. Оцени работу администратора в этом диалоге.
Разбери сильные и слабые стороны в 3-5 предложениях.
В конце ОБЯЗАТЕЛЬНО добавь отдельной строкой итог в формате:
Базовая оценка: N/20
где N — целое число от 0 до 20.`

// SystemPrompt renders the persona block the generation collaborator plays.
func SystemPrompt(r Role) string {
	return fmt.Sprintf(systemPromptTemplate, r.Name, r.LevelDescription, r.MainObjection)
}

// StartInstruction is the synthetic first "user" message that makes the
// client open the conversation.
func StartInstruction() string {
	return startInstruction
}

// EvaluationPrompt asks the collaborator for a written evaluation carrying
// a parseable base score line.
func EvaluationPrompt(r Role) string {
	return fmt.Sprintf(evaluationPromptTemplate, r.Name)
}
