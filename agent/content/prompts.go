package content

import (
	"fmt"
	"strings"
)

// systemPrompt 所有内容生成共用的系统提示
const systemPrompt = "You are a helpful AI assistant that creates educational content and answers questions. Always include at least one diagram or visual explanation in the output."

const (
	explainMoreTitle = "More About This Topic"
	explainMoreIcon  = "🤔"
	learnTitle       = "AI Answer"
	learnIcon        = "📘"
)

// headingPrompt 要求大标题、图示与要点列表
func headingPrompt(title, body, icon string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s\n", icon, title)
	b.WriteString("Please answer in the following format:\n")
	b.WriteString("- Start with a large, bold markdown heading (##) and a relevant icon for the topic.\n")
	b.WriteString("- Add a diagram (as a Markdown image, ASCII, or a creative visual analogy) and provide a caption. If you can't generate an image, use ASCII or a creative analogy in markdown.\n")
	b.WriteString("- Structure your explanation as concise bullet points (not paragraphs).\n")
	b.WriteString("- Always include the diagram and the points, even if you must invent a visual analogy.\n\n")
	fmt.Fprintf(&b, "Content to answer: %s\n", body)
	return b.String()
}

func questionsPrompt(topic string) string {
	var b strings.Builder
	b.WriteString("You are an educational quiz generator.\n")
	fmt.Fprintf(&b, "Given the topic below, generate exactly %d multiple-choice questions in this strict JSON format:\n", QuestionCount)
	b.WriteString("[\n {\n")
	b.WriteString(" \"question_text\": \"...\",\n")
	b.WriteString(" \"options\": [\"...\", \"...\", \"...\", \"...\"],\n")
	b.WriteString(" \"correct_answer\": \"...\",\n")
	b.WriteString(" \"explanation\": \"...\",\n")
	b.WriteString(" \"diagram\": \"(Provide a Markdown image, ASCII, or visual analogy for this question and explanation, and label it. Render as markdown string.)\"\n")
	b.WriteString(" },\n ...\n]\n")
	b.WriteString("For each question, the explanation must:\n")
	b.WriteString("- Start with a big heading with an icon\n")
	b.WriteString("- Include the diagram (as markdown)\n")
	b.WriteString("- Then, give the explanation as bullet points (not a paragraph)\n")
	b.WriteString("Return only a JSON array of question objects. Do not add any extra text before or after the array.\n")
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	return b.String()
}

func quizPrompt(notes string) string {
	return `You are an expert educational quiz generator. Based on the following content, create a comprehensive quiz with explanations and visual diagrams.

Content to create quiz from: ` + notes + `

Please generate exactly 3-5 multiple choice questions about this content. Follow this EXACT JSON-like format:

**QUIZ START**

**Question 1:** What is the main concept being discussed in this content?
A) Option A text here
B) Option B text here
C) Option C text here
D) Option D text here
**Correct Answer:** B
**Explanation:** Detailed explanation of why B is correct and others are wrong. Include key concepts and learning points.
**Diagram:** flowchart TD
    A[Main Concept] --> B[Key Feature 1]
    A --> C[Key Feature 2]
    B --> D[Application 1]
    C --> E[Application 2]

**Question 2:** [Next question following same format...]

**QUIZ END**

Important guidelines:
- Questions should test understanding, not just memorization
- Make all 4 options plausible but only one clearly correct
- Explanations should be educational and comprehensive (2-3 sentences)
- Include mermaid flowchart diagrams that visualize the concept being tested
- Diagrams should be simple but informative (flowchart, graph, or concept map)
- Focus on the most important aspects of the content
- Vary question difficulty from basic to application level`
}

// cleanQuiz 去掉图示外层的 mermaid 围栏与分隔线
func cleanQuiz(text string) string {
	text = strings.ReplaceAll(text, "```mermaid\n", "")
	text = strings.ReplaceAll(text, "\n```", "")
	return strings.ReplaceAll(text, "\n---\n", "\n\n")
}

// excerpt 取前 n 个字符，截断时追加省略号
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func offlineLearn(notes string) string {
	return fmt.Sprintf(`## %s %s

**Offline Mode - AI service unavailable**

Here's a short study outline for: "%s"

### Key Concepts:
- Read the notes once end to end before focusing on details
- Mark the terms you cannot explain in your own words
- Try again shortly for a full AI explanation with diagrams

### Learning Path:
1. **Understand the Basics** - Start with fundamental concepts
2. **Practice** - Use interactive exercises and quizzes
3. **Apply** - Work on real-world examples
4. **Review** - Test your knowledge with assessments`, learnIcon, learnTitle, excerpt(notes, 100))
}

func offlineQuiz(notes string) string {
	return fmt.Sprintf(`**QUIZ START**

**Question 1:** Based on the content about "%s", what is the main concept being discussed?
A) A technical process that requires advanced knowledge
B) A fundamental principle that can be applied broadly
C) A specific tool used only in certain situations
D) An outdated method no longer in use
**Correct Answer:** B
**Explanation:** The content discusses fundamental principles that have broad applications across multiple domains. Understanding these core concepts is essential for building expertise in the field.
**Diagram:** flowchart TD
    A[Main Concept] --> B[Core Principles]
    A --> C[Applications]
    B --> D[Theory]
    B --> E[Practice]
    C --> F[Real World Use]

**Question 2:** Which approach would be most effective for learning this topic?
A) Memorizing all the details without understanding
B) Focusing only on practical applications
C) Understanding the underlying principles first
D) Skipping the basics and jumping to advanced concepts
**Correct Answer:** C
**Explanation:** Effective learning requires understanding fundamental principles before moving to applications. This creates a solid foundation that supports advanced learning and practical implementation.
**Diagram:** flowchart TD
    A[Principles] --> B[Understanding]
    B --> C[Application]
    C --> D[Expertise]

**QUIZ END**`, excerpt(notes, 50))
}
